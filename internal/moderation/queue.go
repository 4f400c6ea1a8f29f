package moderation

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"heartua-bot/internal/config"
	"heartua-bot/internal/dialog"
	"heartua-bot/internal/locales"
)

const (
	queueAnnouncementLimit = 10
	queuePremiumLimit      = 5
	queueShopLimit         = 5
)

// ShowModerationQueue renders the pending work to the requesting admin:
// a counts summary followed by one card per item with approve/reject
// buttons. Payment screenshots ride along as photos.
func (w *Workflow) ShowModerationQueue(ctx context.Context, adminChatID int64) error {
	anns, err := w.anns.ListPendingAnnouncements(ctx, queueAnnouncementLimit)
	if err != nil {
		return err
	}
	services, err := w.premium.ListPendingPremiumServices(ctx, queuePremiumLimit)
	if err != nil {
		return err
	}
	orders, err := w.shop.ListPendingShopOrders(ctx, queueShopLimit)
	if err != nil {
		return err
	}

	if len(anns) == 0 && len(services) == 0 && len(orders) == 0 {
		return w.send(ctx, adminChatID, w.msg("MsgModerationEmpty", nil))
	}

	if err := w.send(ctx, adminChatID, w.msg("MsgModerationCounts", map[string]interface{}{
		"Announcements": len(anns),
		"Premium":       len(services),
		"Shop":          len(orders),
	})); err != nil {
		return err
	}

	for i := range anns {
		ann := &anns[i]
		photo := ""
		if ann.Photo != nil {
			photo = *ann.Photo
		}
		w.sendCard(ctx, adminChatID, announcementCard(w.loc, "MsgAnnouncementCard", ann), photo, announcementButtons(w.loc, ann.ID))
	}

	for i := range services {
		svc := &services[i]
		text := premiumCard(w.loc, "MsgPremiumCard", svc)
		if svc.AnnouncementID != nil {
			if ann, err := w.anns.GetAnnouncementByID(ctx, *svc.AnnouncementID); err == nil {
				text += locales.GetMessage(w.loc, "MsgNewPremiumAnnouncementBlock", map[string]interface{}{
					"Category": config.CategoryName(ann.Category),
					"Text":     dialog.Ellipsize(ann.Text, 50),
				}, nil)
			}
		}
		photo := ""
		if svc.PaymentScreenshot != nil {
			photo = *svc.PaymentScreenshot
		}
		w.sendCard(ctx, adminChatID, text, photo, premiumButtons(w.loc, svc.ID))
	}

	for i := range orders {
		order := &orders[i]
		photo := ""
		if order.PaymentScreenshot != nil {
			photo = *order.PaymentScreenshot
		}
		w.sendCard(ctx, adminChatID, shopOrderCard(w.loc, "MsgShopOrderCard", order), photo, shopButtons(w.loc, order.ID))
	}

	return nil
}

// sendCard is best-effort per item so one bad card does not hide the
// rest of the queue.
func (w *Workflow) sendCard(ctx context.Context, chatID int64, text, photo string, markup *telego.InlineKeyboardMarkup) {
	var err error
	if photo != "" {
		_, err = w.bot.SendPhoto(ctx, tu.Photo(tu.ID(chatID), tu.FileFromID(photo)).WithCaption(text).WithReplyMarkup(markup))
	} else {
		_, err = w.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(markup))
	}
	if err != nil {
		log.Printf("[Moderation Admin:%d] Card send failed: %v", chatID, err)
	}
}
