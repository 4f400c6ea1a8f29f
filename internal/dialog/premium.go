package dialog

import (
	"context"
	"time"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/session"
)

// ShowPremiumMenu presents the premium catalog.
func (e *Engine) ShowPremiumMenu(ctx context.Context, chatID int64) error {
	return e.sendMarkup(ctx, chatID, e.msg("MsgPremiumMenu", nil), PremiumMenuKeyboard(e.loc))
}

// StartPremiumService begins a premium purchase. Pin services run slot
// admission control and require picking one of the user's approved
// announcements; autopost services go straight to payment because the
// recurring post is authored after approval.
func (e *Engine) StartPremiumService(ctx context.Context, chatID, userID int64, serviceKey string) error {
	svc, ok := config.PremiumServiceByKey(serviceKey)
	if !ok {
		return e.send(ctx, chatID, e.msg("MsgErrorServiceNotFound", nil))
	}

	if config.IsPinService(serviceKey) {
		return e.startPinService(ctx, chatID, userID, svc)
	}

	e.store.Set(userID, session.State{Action: session.ActionPremiumPayment, ServiceKey: serviceKey})
	return e.send(ctx, chatID, e.paymentPrompt(svc))
}

func (e *Engine) startPinService(ctx context.Context, chatID, userID int64, svc config.PremiumService) error {
	now := time.Now()
	count, err := e.pins.CountActivePins(ctx, now)
	if err != nil {
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}
	if count >= e.maxPinned {
		nextFree := ""
		if next, err := e.pins.NextPinExpiry(ctx, now); err == nil && next != nil {
			nextFree = next.Format("02.01.2006 15:04")
		}
		return e.send(ctx, chatID, e.msg("MsgPinSlotsFull", map[string]interface{}{"NextFree": nextFree}))
	}

	announcements, err := e.announcements.ListApprovedByUser(ctx, userID, 10)
	if err != nil {
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}
	if len(announcements) == 0 {
		return e.send(ctx, chatID, e.msg("MsgNoApprovedAnnouncements", nil))
	}

	text := e.msg("MsgPremiumSelectAnnouncement", map[string]interface{}{
		"Name":  svc.Name,
		"Price": svc.Price,
	})
	return e.sendMarkup(ctx, chatID, text, AnnouncementPickKeyboard(svc.Key, announcements, e.loc))
}

// ConfirmPremiumSelection binds the chosen announcement and moves the
// user to the payment step.
func (e *Engine) ConfirmPremiumSelection(ctx context.Context, chatID, userID int64, serviceKey string, announcementID int64) error {
	svc, ok := config.PremiumServiceByKey(serviceKey)
	if !ok {
		return e.send(ctx, chatID, e.msg("MsgErrorServiceNotFound", nil))
	}

	e.store.Set(userID, session.State{
		Action:         session.ActionPremiumPayment,
		ServiceKey:     serviceKey,
		AnnouncementID: announcementID,
	})
	return e.send(ctx, chatID, e.paymentPrompt(svc))
}

func (e *Engine) handlePremiumScreenshot(ctx context.Context, chatID, userID int64, state session.State, message telego.Message) error {
	if len(message.Photo) == 0 {
		return e.send(ctx, chatID, e.msg("MsgErrorScreenshotRequired", nil))
	}
	screenshot := message.Photo[len(message.Photo)-1].FileID

	duration := 0
	if svc, ok := config.PremiumServiceByKey(state.ServiceKey); ok {
		duration = svc.Duration
	}
	svc := &database.PremiumService{
		UserID:            userID,
		ServiceType:       state.ServiceKey,
		Duration:          duration,
		PaymentScreenshot: &screenshot,
		Status:            database.StatusPending,
	}
	if state.AnnouncementID != 0 {
		annID := state.AnnouncementID
		svc.AnnouncementID = &annID
	}

	id, err := e.premium.CreatePremiumService(ctx, svc)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}

	e.store.Clear(userID)
	if err := e.send(ctx, chatID, e.msg("MsgPremiumSubmitted", nil)); err != nil {
		return err
	}
	e.notifier.PremiumServiceSubmitted(ctx, id)
	return nil
}

func (e *Engine) paymentPrompt(svc config.PremiumService) string {
	return e.msg("MsgPremiumPaymentPrompt", map[string]interface{}{
		"Name":        svc.Name,
		"Price":       svc.Price,
		"PaymentInfo": config.PaymentInfo,
	})
}
