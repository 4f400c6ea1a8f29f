package config

import "strings"

// Category describes an announcement category and the supergroup topic it
// publishes into. TopicID of 0 means the channel has no topic for it.
type Category struct {
	Key     string
	Name    string
	TopicID int
}

// PremiumService describes one entry of the premium catalog. Keys follow the
// "autopost_<hours>" / "pin_<hours>" convention; the prefix selects the
// fulfillment branch on approval.
type PremiumService struct {
	Key      string
	Name     string
	Duration int // hours
	Price    int // UAH
}

// Package is a virtual-currency bundle sold in the shop.
type Package struct {
	Amount int
	Price  int // UAH
}

// Categories lists the announcement categories in menu order.
var Categories = []Category{
	{Key: "free_agent", Name: "🎮 Free Agent", TopicID: 11},
	{Key: "clan_recruitment", Name: "👥 Набір у клан", TopicID: 12},
	{Key: "custom", Name: "🎯 Кастомки", TopicID: 13},
	{Key: "practice", Name: "🏋️ Праки", TopicID: 14},
	{Key: "tdm", Name: "⚔️ TDM", TopicID: 15},
	{Key: "giveaway", Name: "🎁 Розіграші", TopicID: 16},
}

// PremiumServices lists the purchasable premium placements in menu order.
var PremiumServices = []PremiumService{
	{Key: "autopost_6", Name: "Автопост 6 годин", Duration: 6, Price: 50},
	{Key: "autopost_12", Name: "Автопост 12 годин", Duration: 12, Price: 90},
	{Key: "autopost_24", Name: "Автопост 24 години", Duration: 24, Price: 150},
	{Key: "pin_24", Name: "Закріп на 24 години", Duration: 24, Price: 100},
}

// UCPackages are the PUBG Mobile UC bundles, referenced by index in
// callback data.
var UCPackages = []Package{
	{Amount: 60, Price: 38},
	{Amount: 120, Price: 80},
	{Amount: 180, Price: 115},
	{Amount: 325, Price: 190},
	{Amount: 660, Price: 370},
	{Amount: 985, Price: 560},
	{Amount: 1320, Price: 740},
	{Amount: 1800, Price: 900},
	{Amount: 2460, Price: 1300},
	{Amount: 3850, Price: 1800},
	{Amount: 5650, Price: 2650},
	{Amount: 8100, Price: 3600},
	{Amount: 11950, Price: 5400},
	{Amount: 16200, Price: 7200},
	{Amount: 24300, Price: 10800},
	{Amount: 32400, Price: 14500},
	{Amount: 40500, Price: 18300},
}

// StarsPackages are the Telegram Stars bundles, referenced by index in
// callback data.
var StarsPackages = []Package{
	{Amount: 50, Price: 40},
	{Amount: 100, Price: 75},
	{Amount: 150, Price: 120},
	{Amount: 200, Price: 150},
	{Amount: 250, Price: 195},
	{Amount: 300, Price: 235},
	{Amount: 400, Price: 310},
	{Amount: 500, Price: 385},
	{Amount: 750, Price: 580},
	{Amount: 1000, Price: 760},
	{Amount: 1500, Price: 1150},
	{Amount: 2500, Price: 1900},
}

// PaymentInfo is shown to users before they upload a payment screenshot.
const PaymentInfo = "💳 Реквізити для оплати:\n\n🔹 Монобанк: 5375 4141 XXXX XXXX\n🔹 ПриватБанк: 5168 7422 XXXX XXXX\n\n📸 Після оплати надішліть скріншот квитанції"

// CategoryByKey returns the category for the given key, if configured.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryName returns the display name for a category key, falling back to
// the key itself for rows stored before a category was removed from config.
func CategoryName(key string) string {
	if c, ok := CategoryByKey(key); ok {
		return c.Name
	}
	return key
}

// CategoryTopicID returns the topic ID for a category key, 0 when unset.
func CategoryTopicID(key string) int {
	if c, ok := CategoryByKey(key); ok {
		return c.TopicID
	}
	return 0
}

// PremiumServiceByKey returns the premium catalog entry for the given key.
func PremiumServiceByKey(key string) (PremiumService, bool) {
	for _, s := range PremiumServices {
		if s.Key == key {
			return s, true
		}
	}
	return PremiumService{}, false
}

// IsPinService reports whether a service key buys a pinned-post slot.
func IsPinService(key string) bool { return strings.HasPrefix(key, "pin_") }

// IsAutopostService reports whether a service key buys recurring publication.
func IsAutopostService(key string) bool { return strings.HasPrefix(key, "autopost_") }
