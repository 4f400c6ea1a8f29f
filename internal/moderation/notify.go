// Package moderation implements the admin-facing workflow: submission
// notifications, the pending-queue screen and approve/reject handling
// for announcements, premium services and shop orders.
package moderation

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"heartua-bot/internal/callback"
	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/dialog"
	"heartua-bot/internal/locales"
	"heartua-bot/pkg/telegoapi"
)

// Notifier fans freshly submitted entities out to every admin with
// approve/reject buttons. Failure to reach one admin never blocks the
// others.
type Notifier struct {
	bot      telegoapi.BotAPI
	adminIDs []int64
	anns     database.AnnouncementRepository
	premium  database.PremiumRepository
	shop     database.ShopRepository
	loc      *i18n.Localizer
}

func NewNotifier(bot telegoapi.BotAPI, adminIDs []int64, anns database.AnnouncementRepository, premium database.PremiumRepository, shop database.ShopRepository, loc *i18n.Localizer) *Notifier {
	return &Notifier{bot: bot, adminIDs: adminIDs, anns: anns, premium: premium, shop: shop, loc: loc}
}

// AnnouncementSubmitted sends the new-announcement card to all admins.
func (n *Notifier) AnnouncementSubmitted(ctx context.Context, announcementID int64) {
	ann, err := n.anns.GetAnnouncementWithUser(ctx, announcementID)
	if err != nil {
		log.Printf("[Notify Announcement:%d] Failed to load card: %v", announcementID, err)
		return
	}

	text := announcementCard(n.loc, "MsgNewAnnouncementCard", ann)
	photo := ""
	if ann.Photo != nil {
		photo = *ann.Photo
	}
	n.sendToAllAdmins(ctx, text, photo, announcementButtons(n.loc, ann.ID))
}

// PremiumServiceSubmitted sends the new-premium card, with the payment
// screenshot, to all admins.
func (n *Notifier) PremiumServiceSubmitted(ctx context.Context, serviceID int64) {
	svc, ann, err := n.premium.GetPendingPremiumWithAnnouncement(ctx, serviceID)
	if err != nil {
		log.Printf("[Notify Premium:%d] Failed to load card: %v", serviceID, err)
		return
	}

	text := premiumCard(n.loc, "MsgNewPremiumCard", svc)
	if ann != nil {
		text += locales.GetMessage(n.loc, "MsgNewPremiumAnnouncementBlock", map[string]interface{}{
			"Category": config.CategoryName(ann.Category),
			"Text":     dialog.Ellipsize(ann.Text, 50),
		}, nil)
	}
	screenshot := ""
	if svc.PaymentScreenshot != nil {
		screenshot = *svc.PaymentScreenshot
	}
	n.sendToAllAdmins(ctx, text, screenshot, premiumButtons(n.loc, svc.ID))
}

// ShopOrderSubmitted sends the new-order card, with the payment
// screenshot, to all admins.
func (n *Notifier) ShopOrderSubmitted(ctx context.Context, orderID int64) {
	order, err := n.shop.GetShopOrderWithUser(ctx, orderID)
	if err != nil {
		log.Printf("[Notify ShopOrder:%d] Failed to load card: %v", orderID, err)
		return
	}

	text := shopOrderCard(n.loc, "MsgNewShopOrderCard", order)
	screenshot := ""
	if order.PaymentScreenshot != nil {
		screenshot = *order.PaymentScreenshot
	}
	n.sendToAllAdmins(ctx, text, screenshot, shopButtons(n.loc, order.ID))
}

func (n *Notifier) sendToAllAdmins(ctx context.Context, text, photo string, markup *telego.InlineKeyboardMarkup) {
	for _, adminID := range n.adminIDs {
		var err error
		if photo != "" {
			params := tu.Photo(tu.ID(adminID), tu.FileFromID(photo)).WithCaption(text).WithReplyMarkup(markup)
			_, err = n.bot.SendPhoto(ctx, params)
		} else {
			_, err = n.bot.SendMessage(ctx, tu.Message(tu.ID(adminID), text).WithReplyMarkup(markup))
		}
		if err != nil {
			log.Printf("[Notify Admin:%d] Send failed: %v", adminID, err)
		}
	}
}

// Card and button builders shared with the moderation queue screen.

func announcementCard(loc *i18n.Localizer, msgID string, ann *database.AnnouncementWithUser) string {
	return locales.GetMessage(loc, msgID, map[string]interface{}{
		"ID":       ann.ID,
		"From":     ann.User.DisplayName(),
		"Category": config.CategoryName(ann.Category),
		"Text":     ann.Text,
	}, nil)
}

func premiumCard(loc *i18n.Localizer, msgID string, svc *database.PremiumServiceWithUser) string {
	name := svc.ServiceType
	price := 0
	if info, ok := config.PremiumServiceByKey(svc.ServiceType); ok {
		name = info.Name
		price = info.Price
	}
	return locales.GetMessage(loc, msgID, map[string]interface{}{
		"ID":    svc.ID,
		"From":  svc.User.DisplayName(),
		"Name":  name,
		"Price": price,
	}, nil)
}

func shopOrderCard(loc *i18n.Localizer, msgID string, order *database.ShopOrderWithUser) string {
	product := "UC"
	if order.ProductType == database.ProductStars {
		product = "Stars"
	}
	return locales.GetMessage(loc, msgID, map[string]interface{}{
		"ID":      order.ID,
		"From":    order.User.DisplayName(),
		"Amount":  order.Amount,
		"Product": product,
		"Price":   order.Price,
		"GameID":  order.GameID,
	}, nil)
}

func announcementButtons(loc *i18n.Localizer, id int64) *telego.InlineKeyboardMarkup {
	return approveRejectRow(loc, callback.ApproveAnnouncementData(id), callback.RejectAnnouncementData(id))
}

func premiumButtons(loc *i18n.Localizer, id int64) *telego.InlineKeyboardMarkup {
	return approveRejectRow(loc, callback.ApprovePremiumData(id), callback.RejectPremiumData(id))
}

func shopButtons(loc *i18n.Localizer, id int64) *telego.InlineKeyboardMarkup {
	return approveRejectRow(loc, callback.ApproveShopData(id), callback.RejectShopData(id))
}

func approveRejectRow(loc *i18n.Localizer, approveData, rejectData string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnApprove", nil, nil)).WithCallbackData(approveData),
			tu.InlineKeyboardButton(locales.GetMessage(loc, "BtnReject", nil, nil)).WithCallbackData(rejectData),
		),
	)
}
