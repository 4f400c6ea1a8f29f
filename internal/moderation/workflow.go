package moderation

import (
	"context"
	"errors"
	"log"
	"time"

	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"heartua-bot/internal/database"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/publish"
	"heartua-bot/internal/session"
	"heartua-bot/pkg/telegoapi"
)

// Publisher posts approved announcements to the channel.
type Publisher interface {
	Publish(ctx context.Context, content publish.Content) error
	ChannelLink() string
}

// Workflow executes admin approve/reject decisions, gated upstream by
// the admin allow-list.
type Workflow struct {
	bot       telegoapi.BotAPI
	publisher Publisher
	store     session.Store
	anns      database.AnnouncementRepository
	premium   database.PremiumRepository
	autopost  database.AutopostRepository
	pins      database.PinnedRepository
	shop      database.ShopRepository
	channels  database.ChannelRepository
	loc       *i18n.Localizer

	// now is swapped in tests for deterministic expiry math.
	now func() time.Time
}

// WorkflowDeps collects the workflow's collaborators.
type WorkflowDeps struct {
	Bot           telegoapi.BotAPI
	Publisher     Publisher
	Store         session.Store
	Announcements database.AnnouncementRepository
	Premium       database.PremiumRepository
	Autopost      database.AutopostRepository
	Pins          database.PinnedRepository
	Shop          database.ShopRepository
	Channels      database.ChannelRepository
	Localizer     *i18n.Localizer
}

func NewWorkflow(d WorkflowDeps) *Workflow {
	return &Workflow{
		bot:       d.Bot,
		publisher: d.Publisher,
		store:     d.Store,
		anns:      d.Announcements,
		premium:   d.Premium,
		autopost:  d.Autopost,
		pins:      d.Pins,
		shop:      d.Shop,
		channels:  d.Channels,
		loc:       d.Localizer,
		now:       time.Now,
	}
}

// ApproveAnnouncement marks the announcement approved, publishes it and
// notifies both parties. The status change is not rolled back when the
// publish fails; the failure is reported to the admin instead.
func (w *Workflow) ApproveAnnouncement(ctx context.Context, adminChatID, announcementID int64) error {
	ann, err := w.anns.GetAnnouncementByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorAnnouncementNotFound", nil))
		}
		return err
	}

	if err := w.anns.ApproveAnnouncement(ctx, announcementID, w.now()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorAnnouncementNotFound", nil))
		}
		return err
	}

	if err := w.publisher.Publish(ctx, publish.ContentFromAnnouncement(ann)); err != nil {
		log.Printf("[Moderation Announcement:%d] Publish failed after approval: %v", announcementID, err)
		return w.send(ctx, adminChatID, w.msg("MsgErrorPublish", map[string]interface{}{"Error": err.Error()}))
	}

	// Numeric channel IDs have no public link; skip the link line then.
	text := w.msg("MsgAnnouncementApprovedUserNoLink", nil)
	if link := w.publisher.ChannelLink(); link != "" {
		text = w.msg("MsgAnnouncementApprovedUser", map[string]interface{}{"Link": link})
	}
	w.notifyUser(ctx, ann.UserID, text)
	return w.send(ctx, adminChatID, w.msg("MsgAnnouncementApprovedAdmin", map[string]interface{}{"ID": announcementID}))
}

// RejectAnnouncement marks the announcement rejected and notifies both
// parties.
func (w *Workflow) RejectAnnouncement(ctx context.Context, adminChatID, announcementID int64) error {
	ann, err := w.anns.GetAnnouncementByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorAnnouncementNotFound", nil))
		}
		return err
	}

	if err := w.anns.RejectAnnouncement(ctx, announcementID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorAnnouncementNotFound", nil))
		}
		return err
	}

	w.notifyUser(ctx, ann.UserID, w.msg("MsgAnnouncementRejectedUser", nil))
	return w.send(ctx, adminChatID, w.msg("MsgAnnouncementRejectedAdmin", map[string]interface{}{"ID": announcementID}))
}

// ApproveShopOrder marks the order completed and notifies both parties.
// Fulfillment itself happens off-system.
func (w *Workflow) ApproveShopOrder(ctx context.Context, adminChatID, orderID int64) error {
	order, err := w.shop.GetShopOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorOrderNotFound", nil))
		}
		return err
	}

	if err := w.shop.CompleteShopOrder(ctx, orderID, w.now()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorOrderNotFound", nil))
		}
		return err
	}

	w.notifyUser(ctx, order.UserID, w.msg("MsgShopCompletedUser", nil))
	return w.send(ctx, adminChatID, w.msg("MsgShopCompletedAdmin", map[string]interface{}{"ID": orderID}))
}

// RejectShopOrder marks the order rejected and notifies both parties.
func (w *Workflow) RejectShopOrder(ctx context.Context, adminChatID, orderID int64) error {
	order, err := w.shop.GetShopOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorOrderNotFound", nil))
		}
		return err
	}

	if err := w.shop.RejectShopOrder(ctx, orderID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return w.send(ctx, adminChatID, w.msg("MsgErrorOrderNotFound", nil))
		}
		return err
	}

	w.notifyUser(ctx, order.UserID, w.msg("MsgShopRejectedUser", nil))
	return w.send(ctx, adminChatID, w.msg("MsgShopRejectedAdmin", map[string]interface{}{"ID": orderID}))
}

// RemoveChannel deletes a required channel. Removing a channel that is
// already gone still confirms.
func (w *Workflow) RemoveChannel(ctx context.Context, adminChatID int64, channelID string) error {
	if err := w.channels.RemoveRequiredChannel(ctx, channelID); err != nil {
		return err
	}
	return w.send(ctx, adminChatID, w.msg("MsgChannelRemoved", nil))
}

func (w *Workflow) msg(id string, data map[string]interface{}) string {
	return locales.GetMessage(w.loc, id, data, nil)
}

func (w *Workflow) send(ctx context.Context, chatID int64, text string) error {
	_, err := w.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}

// notifyUser is best-effort; the entity transition already happened.
func (w *Workflow) notifyUser(ctx context.Context, userID int64, text string) {
	if err := w.send(ctx, userID, text); err != nil {
		log.Printf("[Moderation User:%d] Notify failed: %v", userID, err)
	}
}
