// Package dialog implements the per-user conversation flows: announcement
// submission, premium placements, shop orders and the admin text flows.
// At most one dialog state exists per user; inbound messages route here
// before falling back to menu dispatch.
package dialog

import (
	"context"
	"log"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/ratelimit"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/publish"
	"heartua-bot/internal/session"
	"heartua-bot/pkg/telegoapi"
)

// AdminNotifier fans a freshly submitted entity out to every admin.
type AdminNotifier interface {
	AnnouncementSubmitted(ctx context.Context, announcementID int64)
	PremiumServiceSubmitted(ctx context.Context, serviceID int64)
	ShopOrderSubmitted(ctx context.Context, orderID int64)
}

// Gate reports which required channels a user has not joined.
type Gate interface {
	Check(ctx context.Context, userID int64) ([]database.RequiredChannel, error)
}

// Publisher posts announcement content to the channel.
type Publisher interface {
	Publish(ctx context.Context, content publish.Content) error
	PublishWithHeader(ctx context.Context, content publish.Content, header string) error
	ChannelLink() string
}

// Deps collects everything the engine is wired with.
type Deps struct {
	Bot           telegoapi.BotAPI
	Store         session.Store
	Gate          Gate
	Publisher     Publisher
	Users         database.UserRepository
	Announcements database.AnnouncementRepository
	Premium       database.PremiumRepository
	Autopost      database.AutopostRepository
	Pins          database.PinnedRepository
	Shop          database.ShopRepository
	Channels      database.ChannelRepository
	Notifier      AdminNotifier
	Localizer     *i18n.Localizer
	MaxPinned     int
}

// Engine drives multi-step user dialogs against the session store.
type Engine struct {
	bot           telegoapi.BotAPI
	store         session.Store
	gate          Gate
	publisher     Publisher
	users         database.UserRepository
	announcements database.AnnouncementRepository
	premium       database.PremiumRepository
	autopost      database.AutopostRepository
	pins          database.PinnedRepository
	shop          database.ShopRepository
	channels      database.ChannelRepository
	notifier      AdminNotifier
	loc           *i18n.Localizer
	maxPinned     int

	// Broadcast throttle, shared across broadcasts.
	broadcastLimiter ratelimit.Limiter
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		bot:              d.Bot,
		store:            d.Store,
		gate:             d.Gate,
		publisher:        d.Publisher,
		users:            d.Users,
		announcements:    d.Announcements,
		premium:          d.Premium,
		autopost:         d.Autopost,
		pins:             d.Pins,
		shop:             d.Shop,
		channels:         d.Channels,
		notifier:         d.Notifier,
		loc:              d.Localizer,
		maxPinned:        d.MaxPinned,
		broadcastLimiter: ratelimit.New(20),
	}
}

// HandleMessage routes a message through the user's open dialog state.
// Returns false when the user has no open state so the caller can fall
// through to menu dispatch.
func (e *Engine) HandleMessage(ctx context.Context, message telego.Message) bool {
	if message.From == nil {
		return false
	}
	userID := message.From.ID
	state, ok := e.store.Get(userID)
	if !ok {
		return false
	}
	chatID := message.Chat.ID

	var err error
	switch state.Action {
	case session.ActionAwaitingText:
		err = e.handleAnnouncementText(ctx, chatID, userID, state, message)
	case session.ActionSelectCategory:
		// Category picks arrive as callbacks; a text message here just
		// re-shows the menu.
		err = e.sendMarkup(ctx, chatID, e.msg("MsgChooseCategory", nil), CategoryKeyboard(e.loc))
	case session.ActionAutopostText:
		err = e.handleAutopostText(ctx, chatID, userID, state, message)
	case session.ActionPremiumPayment:
		err = e.handlePremiumScreenshot(ctx, chatID, userID, state, message)
	case session.ActionShopGameID:
		err = e.handleShopGameID(ctx, chatID, userID, state, message)
	case session.ActionShopPayment:
		err = e.handleShopScreenshot(ctx, chatID, userID, state, message)
	case session.ActionBroadcastMessage:
		err = e.handleBroadcast(ctx, chatID, userID, message)
	case session.ActionAwaitingChannel:
		err = e.handleAddChannel(ctx, chatID, userID, message)
	default:
		e.store.Clear(userID)
		return false
	}
	if err != nil {
		log.Printf("[Dialog User:%d Action:%s] %v", userID, state.Action, err)
	}
	return true
}

// SelectCategory handles a category button press. When the user is
// picking a category for an approved autopost slot, the flow moves on to
// authoring the recurring post; otherwise a regular announcement
// submission starts.
func (e *Engine) SelectCategory(ctx context.Context, chatID, userID int64, categoryKey string) error {
	cat, ok := config.CategoryByKey(categoryKey)
	if !ok {
		return e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil))
	}

	if state, open := e.store.Get(userID); open && state.Action == session.ActionSelectCategory {
		state.Action = session.ActionAutopostText
		state.Category = categoryKey
		e.store.Set(userID, state)
		return e.send(ctx, chatID, e.msg("MsgAnnouncementTextPrompt", map[string]interface{}{"Category": cat.Name}))
	}

	e.store.Set(userID, session.State{Action: session.ActionAwaitingText, Category: categoryKey})
	return e.send(ctx, chatID, e.msg("MsgAnnouncementTextPrompt", map[string]interface{}{"Category": cat.Name}))
}

// Cancel clears any open dialog and confirms.
func (e *Engine) Cancel(ctx context.Context, chatID, userID int64) error {
	e.store.Clear(userID)
	return e.send(ctx, chatID, e.msg("MsgCancelled", nil))
}

func (e *Engine) handleAnnouncementText(ctx context.Context, chatID, userID int64, state session.State, message telego.Message) error {
	text, photo, spans := messageContent(message)
	if text == "" && photo == "" {
		// The initial submission step aborts on bad input instead of
		// re-prompting; the user restarts from the category menu.
		e.store.Clear(userID)
		return e.send(ctx, chatID, e.msg("MsgErrorTextOrPhotoRequired", nil))
	}

	missing, err := e.gate.Check(ctx, userID)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			log.Printf("[Dialog User:%d] Failed to report gate error: %v", userID, sendErr)
		}
		return err
	}
	if len(missing) > 0 {
		e.store.Clear(userID)
		var b strings.Builder
		b.WriteString(e.msg("MsgSubscriptionRequiredHeader", nil))
		for _, ch := range missing {
			b.WriteString(e.msg("MsgSubscriptionChannelLine", map[string]interface{}{"Name": ch.ChannelName}))
		}
		return e.send(ctx, chatID, b.String())
	}

	ann := &database.Announcement{
		UserID:   userID,
		Category: state.Category,
		Text:     text,
		Entities: spans,
		Status:   database.StatusPending,
	}
	if photo != "" {
		ann.Photo = &photo
	}
	id, err := e.announcements.CreateAnnouncement(ctx, ann)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			log.Printf("[Dialog User:%d] Failed to report store error: %v", userID, sendErr)
		}
		return err
	}

	e.store.Clear(userID)
	if err := e.send(ctx, chatID, e.msg("MsgAnnouncementSubmitted", nil)); err != nil {
		log.Printf("[Dialog User:%d] Failed to confirm submission: %v", userID, err)
	}
	e.notifier.AnnouncementSubmitted(ctx, id)
	return nil
}

// handleAutopostText stores the recurring post authored after an
// autopost purchase was approved, publishes it once immediately and
// activates the pending task. The task only goes active after the first
// publish succeeds.
func (e *Engine) handleAutopostText(ctx context.Context, chatID, userID int64, state session.State, message telego.Message) error {
	text, photo, spans := messageContent(message)
	if text == "" && photo == "" {
		return e.send(ctx, chatID, e.msg("MsgErrorTextOrPhotoRequired", nil))
	}

	ann := &database.Announcement{
		UserID:   userID,
		Category: state.Category,
		Text:     text,
		Entities: spans,
		Status:   database.StatusApproved,
	}
	if photo != "" {
		ann.Photo = &photo
	}
	annID, err := e.announcements.CreateAnnouncement(ctx, ann)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			log.Printf("[Dialog User:%d] Failed to report store error: %v", userID, sendErr)
		}
		return err
	}
	if state.PremiumServiceID != 0 {
		if err := e.premium.AttachAnnouncement(ctx, state.PremiumServiceID, annID); err != nil {
			log.Printf("[Dialog User:%d] Failed to attach announcement %d to premium service %d: %v", userID, annID, state.PremiumServiceID, err)
		}
	}

	ann.ID = annID
	if err := e.publisher.PublishWithHeader(ctx, publish.ContentFromAnnouncement(ann), "🔄 "); err != nil {
		e.store.Clear(userID)
		log.Printf("[Dialog User:%d] First autopost publish failed: %v", userID, err)
		return e.send(ctx, chatID, e.msg("MsgAutopostPublishError", nil))
	}

	if _, err := e.autopost.ActivatePendingTask(ctx, userID, annID); err != nil {
		log.Printf("[Dialog User:%d] Failed to activate autopost task: %v", userID, err)
	}

	e.store.Clear(userID)
	hours := 0
	if svc, ok := config.PremiumServiceByKey(state.ServiceKey); ok {
		hours = svc.Duration
	}
	return e.send(ctx, chatID, e.msg("MsgAutopostStarted", map[string]interface{}{"Hours": hours}))
}

func (e *Engine) msg(id string, data map[string]interface{}) string {
	return locales.GetMessage(e.loc, id, data, nil)
}

func (e *Engine) send(ctx context.Context, chatID int64, text string) error {
	_, err := e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}

func (e *Engine) sendMarkup(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) error {
	_, err := e.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(markup))
	return err
}

// messageContent flattens a message into the pieces the flows care
// about: text (or caption), the largest photo's file ID, and the
// rich-text spans worth preserving.
func messageContent(message telego.Message) (text, photo string, spans []database.EntitySpan) {
	text = message.Text
	if message.Caption != "" {
		text = message.Caption
	}
	if len(message.Photo) > 0 {
		photo = message.Photo[len(message.Photo)-1].FileID
	}
	return text, photo, publish.ExtractSpans(&message)
}
