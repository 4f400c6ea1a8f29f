package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/callback"
)

// HandleCallback processes one inline-keyboard press. The query is
// acknowledged first so buttons never stay in the loading state, then
// the parsed command routes to the dialog engine or the moderation
// workflow. Moderation commands are silently dropped for non-admins.
func (h *MessageHandler) HandleCallback(ctx context.Context, query telego.CallbackQuery) error {
	if err := h.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{CallbackQueryID: query.ID}); err != nil {
		log.Printf("[Callback User:%d] Failed to answer query: %v", query.From.ID, err)
	}

	h.recordUser(ctx, &query.From)
	userID := query.From.ID
	chatID := userID
	if query.Message != nil {
		if msg, ok := query.Message.(*telego.Message); ok && msg != nil {
			chatID = msg.Chat.ID
		}
	}

	cmd, err := callback.Parse(query.Data)
	if err != nil {
		log.Printf("[Callback User:%d] %v", userID, err)
		return nil
	}

	switch cmd.Kind {
	case callback.KindSelectCategory:
		return h.engine.SelectCategory(ctx, chatID, userID, cmd.CategoryKey)
	case callback.KindCancel:
		return h.engine.Cancel(ctx, chatID, userID)

	case callback.KindPremiumStart:
		return h.engine.StartPremiumService(ctx, chatID, userID, cmd.ServiceKey)
	case callback.KindPremiumSelectAnnouncement:
		return h.engine.ConfirmPremiumSelection(ctx, chatID, userID, cmd.ServiceKey, cmd.AnnouncementID)

	case callback.KindShopUC:
		return h.engine.ShowUCShop(ctx, chatID)
	case callback.KindShopStars:
		return h.engine.ShowStarsShop(ctx, chatID)
	case callback.KindShopBack:
		return h.engine.ShowShopMenu(ctx, chatID)
	case callback.KindShopPickUC:
		return h.engine.StartUCOrder(ctx, chatID, userID, cmd.PackageIndex)
	case callback.KindShopPickStars:
		return h.engine.StartStarsOrder(ctx, chatID, userID, cmd.PackageIndex)
	}

	if !h.isAdmin(userID) {
		log.Printf("[Callback User:%d] Ignoring admin command %q from non-admin", userID, query.Data)
		return nil
	}

	switch cmd.Kind {
	case callback.KindApproveAnnouncement:
		return h.workflow.ApproveAnnouncement(ctx, chatID, cmd.AnnouncementID)
	case callback.KindRejectAnnouncement:
		return h.workflow.RejectAnnouncement(ctx, chatID, cmd.AnnouncementID)
	case callback.KindApprovePremium:
		return h.workflow.ApprovePremiumService(ctx, chatID, cmd.PremiumID)
	case callback.KindRejectPremium:
		return h.workflow.RejectPremiumService(ctx, chatID, cmd.PremiumID)
	case callback.KindApproveShop:
		return h.workflow.ApproveShopOrder(ctx, chatID, cmd.OrderID)
	case callback.KindRejectShop:
		return h.workflow.RejectShopOrder(ctx, chatID, cmd.OrderID)
	case callback.KindAddChannel:
		return h.engine.StartAddChannel(ctx, chatID, userID)
	case callback.KindRemoveChannel:
		if err := h.workflow.RemoveChannel(ctx, chatID, cmd.ChannelID); err != nil {
			return err
		}
		return h.showChannelsScreen(ctx, chatID)
	}

	return nil
}
