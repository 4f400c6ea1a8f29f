package moderation

import (
	"context"
	"errors"
	"log"
	"time"

	tu "github.com/mymmrac/telego/telegoutil"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/dialog"
	"heartua-bot/internal/session"
)

// ApprovePremiumService activates a paid placement. Pins get their slot
// record immediately; autoposts get a pending task plus an authoring
// prompt so the buyer writes the recurring post next.
func (w *Workflow) ApprovePremiumService(ctx context.Context, adminChatID, serviceID int64) error {
	svc, err := w.premium.GetPremiumServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorServiceNotFound", nil))
		}
		return err
	}

	now := w.now()
	expires := now.Add(time.Duration(svc.Duration) * time.Hour)

	// The status update only touches a pending row, so the stale second
	// click on a moderation card cannot grant twice. The pin/task insert
	// is a separate statement; a crash in between leaves an approved
	// service without its grant and needs a manual fix.
	if err := w.premium.ApprovePremiumService(ctx, serviceID, now, expires); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorServiceNotFound", nil))
		}
		return err
	}

	switch {
	case config.IsPinService(svc.ServiceType):
		if err := w.activatePin(ctx, svc, expires); err != nil {
			return err
		}
	case config.IsAutopostService(svc.ServiceType):
		if err := w.activateAutopost(ctx, svc, expires); err != nil {
			return err
		}
	default:
		log.Printf("[Moderation Service:%d] Unknown service type %q", serviceID, svc.ServiceType)
	}

	return w.send(ctx, adminChatID, w.msg("MsgPremiumActivatedAdmin", map[string]interface{}{"ID": serviceID}))
}

func (w *Workflow) activatePin(ctx context.Context, svc *database.PremiumService, expires time.Time) error {
	pin := &database.PinnedPost{
		AnnouncementID: svc.AnnouncementID,
		UserID:         svc.UserID,
		Status:         database.StatusActive,
		ExpiresAt:      expires,
	}
	if _, err := w.pins.CreatePinnedPost(ctx, pin); err != nil {
		return err
	}
	w.notifyUser(ctx, svc.UserID, w.msg("MsgPremiumActivatedUser", nil))
	return nil
}

func (w *Workflow) activateAutopost(ctx context.Context, svc *database.PremiumService, expires time.Time) error {
	task := &database.AutopostTask{
		UserID:    svc.UserID,
		Duration:  svc.Duration,
		Status:    database.StatusPending,
		ExpiresAt: expires,
	}
	if _, err := w.autopost.CreateAutopostTask(ctx, task); err != nil {
		return err
	}

	// The buyer authors the recurring post now: category first, then text.
	w.store.Set(svc.UserID, session.State{
		Action:           session.ActionSelectCategory,
		ServiceKey:       svc.ServiceType,
		PremiumServiceID: svc.ID,
	})

	prompt := w.msg("MsgAutopostAuthorPrompt", map[string]interface{}{
		"Name": serviceName(svc.ServiceType),
	})
	msg := tu.Message(tu.ID(svc.UserID), prompt).WithReplyMarkup(dialog.CategoryKeyboard(w.loc))
	if _, err := w.bot.SendMessage(ctx, msg); err != nil {
		log.Printf("[Moderation User:%d] Autopost prompt failed: %v", svc.UserID, err)
	}
	return nil
}

// RejectPremiumService marks the service rejected and notifies both
// parties.
func (w *Workflow) RejectPremiumService(ctx context.Context, adminChatID, serviceID int64) error {
	svc, err := w.premium.GetPremiumServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorServiceNotFound", nil))
		}
		return err
	}

	if err := w.premium.RejectPremiumService(ctx, serviceID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorServiceNotFound", nil))
		}
		return err
	}

	w.notifyUser(ctx, svc.UserID, w.msg("MsgPremiumRejectedUser", nil))
	return w.send(ctx, adminChatID, w.msg("MsgPremiumRejectedAdmin", map[string]interface{}{"ID": serviceID}))
}

// serviceName resolves the catalog display name, falling back to the
// raw type for entries removed from the catalog.
func serviceName(serviceType string) string {
	if svc, ok := config.PremiumServiceByKey(serviceType); ok {
		return svc.Name
	}
	return serviceType
}
