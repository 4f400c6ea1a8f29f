// Package callback parses inline-keyboard callback data into typed
// commands so handlers never touch raw prefix strings.
package callback

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which command a callback query carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindSelectCategory
	KindApproveAnnouncement
	KindRejectAnnouncement
	KindPremiumStart
	KindPremiumSelectAnnouncement
	KindShopUC
	KindShopStars
	KindShopBack
	KindShopPickUC
	KindShopPickStars
	KindApprovePremium
	KindRejectPremium
	KindApproveShop
	KindRejectShop
	KindCancel
	KindAddChannel
	KindRemoveChannel
)

// Command is callback data parsed into its variant. Only the fields
// relevant to the Kind are populated.
type Command struct {
	Kind Kind

	CategoryKey    string
	ServiceKey     string
	AnnouncementID int64
	PremiumID      int64
	OrderID        int64
	PackageIndex   int
	ChannelID      string
}

// Parse decodes callback data. Unrecognized data yields an error so the
// dispatcher can acknowledge the query and move on.
func Parse(data string) (Command, error) {
	switch data {
	case "shop_uc":
		return Command{Kind: KindShopUC}, nil
	case "shop_stars":
		return Command{Kind: KindShopStars}, nil
	case "shop_back":
		return Command{Kind: KindShopBack}, nil
	case "cancel":
		return Command{Kind: KindCancel}, nil
	case "add_channel":
		return Command{Kind: KindAddChannel}, nil
	}

	switch {
	case strings.HasPrefix(data, "category_"):
		return Command{Kind: KindSelectCategory, CategoryKey: strings.TrimPrefix(data, "category_")}, nil

	case strings.HasPrefix(data, "approve_ann_"):
		id, err := parseID(data, "approve_ann_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindApproveAnnouncement, AnnouncementID: id}, nil

	case strings.HasPrefix(data, "reject_ann_"):
		id, err := parseID(data, "reject_ann_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindRejectAnnouncement, AnnouncementID: id}, nil

	case strings.HasPrefix(data, "premium_select_"):
		// premium_select_<service>_<announcementID>, service keys
		// themselves contain underscores so the id is the last segment.
		rest := strings.TrimPrefix(data, "premium_select_")
		cut := strings.LastIndex(rest, "_")
		if cut <= 0 || cut == len(rest)-1 {
			return Command{}, fmt.Errorf("malformed callback data %q", data)
		}
		id, err := strconv.ParseInt(rest[cut+1:], 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("malformed callback data %q: %w", data, err)
		}
		return Command{Kind: KindPremiumSelectAnnouncement, ServiceKey: rest[:cut], AnnouncementID: id}, nil

	case strings.HasPrefix(data, "premium_"):
		return Command{Kind: KindPremiumStart, ServiceKey: strings.TrimPrefix(data, "premium_")}, nil

	case strings.HasPrefix(data, "uc_"):
		idx, err := parseIndex(data, "uc_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindShopPickUC, PackageIndex: idx}, nil

	case strings.HasPrefix(data, "stars_"):
		idx, err := parseIndex(data, "stars_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindShopPickStars, PackageIndex: idx}, nil

	case strings.HasPrefix(data, "approve_premium_"):
		id, err := parseID(data, "approve_premium_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindApprovePremium, PremiumID: id}, nil

	case strings.HasPrefix(data, "reject_premium_"):
		id, err := parseID(data, "reject_premium_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindRejectPremium, PremiumID: id}, nil

	case strings.HasPrefix(data, "approve_shop_"):
		id, err := parseID(data, "approve_shop_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindApproveShop, OrderID: id}, nil

	case strings.HasPrefix(data, "reject_shop_"):
		id, err := parseID(data, "reject_shop_")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindRejectShop, OrderID: id}, nil

	case strings.HasPrefix(data, "remove_channel_"):
		channelID := strings.TrimPrefix(data, "remove_channel_")
		if channelID == "" {
			return Command{}, fmt.Errorf("malformed callback data %q", data)
		}
		return Command{Kind: KindRemoveChannel, ChannelID: channelID}, nil
	}

	return Command{}, fmt.Errorf("unknown callback data %q", data)
}

func parseID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed callback data %q: %w", data, err)
	}
	return id, nil
}

func parseIndex(data, prefix string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("malformed callback data %q", data)
	}
	return idx, nil
}

// Data builders keep the wire format in one place for the keyboards
// that emit it.

func CategoryData(key string) string            { return "category_" + key }
func ApproveAnnouncementData(id int64) string   { return fmt.Sprintf("approve_ann_%d", id) }
func RejectAnnouncementData(id int64) string    { return fmt.Sprintf("reject_ann_%d", id) }
func PremiumStartData(serviceKey string) string { return "premium_" + serviceKey }
func PremiumSelectData(serviceKey string, announcementID int64) string {
	return fmt.Sprintf("premium_select_%s_%d", serviceKey, announcementID)
}
func UCPackageData(index int) string         { return fmt.Sprintf("uc_%d", index) }
func StarsPackageData(index int) string      { return fmt.Sprintf("stars_%d", index) }
func ApprovePremiumData(id int64) string     { return fmt.Sprintf("approve_premium_%d", id) }
func RejectPremiumData(id int64) string      { return fmt.Sprintf("reject_premium_%d", id) }
func ApproveShopData(id int64) string        { return fmt.Sprintf("approve_shop_%d", id) }
func RejectShopData(id int64) string         { return fmt.Sprintf("reject_shop_%d", id) }
func RemoveChannelData(channelID string) string {
	return "remove_channel_" + channelID
}
