package dialog

import (
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"heartua-bot/internal/callback"
	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/locales"
)

// CategoryKeyboard lists the announcement categories, one per row, with
// a cancel row at the bottom.
func CategoryKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(config.Categories)+1)
	for _, c := range config.Categories {
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(c.Name).WithCallbackData(callback.CategoryData(c.Key)),
		))
	}
	rows = append(rows, cancelRow(loc))
	return tu.InlineKeyboard(rows...)
}

// PremiumMenuKeyboard lists the premium catalog with prices.
func PremiumMenuKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(config.PremiumServices)+1)
	for _, s := range config.PremiumServices {
		label := fmt.Sprintf("%s - %d грн", s.Name, s.Price)
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(callback.PremiumStartData(s.Key)),
		))
	}
	rows = append(rows, cancelRow(loc))
	return tu.InlineKeyboard(rows...)
}

// ShopMenuKeyboard offers the two product lines.
func ShopMenuKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnShopUC", nil, nil)).WithCallbackData("shop_uc"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnShopStars", nil, nil)).WithCallbackData("shop_stars"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnMainMenu", nil, nil)).WithCallbackData("cancel"),
		),
	)
}

// UCPackagesKeyboard lists the UC bundles by callback index.
func UCPackagesKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(config.UCPackages)+1)
	for i, pkg := range config.UCPackages {
		label := fmt.Sprintf("%d UC - %d грн", pkg.Amount, pkg.Price)
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(callback.UCPackageData(i)),
		))
	}
	rows = append(rows, backRow(loc))
	return tu.InlineKeyboard(rows...)
}

// StarsPackagesKeyboard lists the Stars bundles by callback index.
func StarsPackagesKeyboard(loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(config.StarsPackages)+1)
	for i, pkg := range config.StarsPackages {
		label := fmt.Sprintf("⭐ %d - %d грн", pkg.Amount, pkg.Price)
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(callback.StarsPackageData(i)),
		))
	}
	rows = append(rows, backRow(loc))
	return tu.InlineKeyboard(rows...)
}

// AnnouncementPickKeyboard lets the user choose which of their approved
// announcements a premium service applies to.
func AnnouncementPickKeyboard(serviceKey string, announcements []database.Announcement, loc *i18n.Localizer) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(announcements)+1)
	for _, ann := range announcements {
		short := Ellipsize(ann.Text, 30)
		if short == "" {
			short = "Без тексту"
		}
		label := fmt.Sprintf("%s: %s", config.CategoryName(ann.Category), short)
		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(callback.PremiumSelectData(serviceKey, ann.ID)),
		))
	}
	rows = append(rows, cancelRow(loc))
	return tu.InlineKeyboard(rows...)
}

func cancelRow(loc *i18n.Localizer) []telego.InlineKeyboardButton {
	return tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnCancel", nil, nil)).WithCallbackData("cancel"),
	)
}

func backRow(loc *i18n.Localizer) []telego.InlineKeyboardButton {
	return tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnBack", nil, nil)).WithCallbackData("shop_back"),
	)
}

// Ellipsize truncates s to max runes, appending "..." when it was cut.
func Ellipsize(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
