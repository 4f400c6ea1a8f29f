// Package handlers routes inbound Telegram updates: commands, reply-menu
// buttons and inline-keyboard callbacks. Messages first pass through the
// dialog engine; only stateless users reach menu dispatch.
package handlers

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"heartua-bot/internal/auth"
	"heartua-bot/internal/database"
	"heartua-bot/internal/dialog"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/moderation"
	"heartua-bot/pkg/telegoapi"
)

// MessageHandler orchestrates update routing. All heavy lifting lives in
// the dialog engine and the moderation workflow; this layer only decides
// who handles what.
type MessageHandler struct {
	bot          telegoapi.BotAPI
	engine       *dialog.Engine
	workflow     *moderation.Workflow
	adminChecker auth.AdminCheckerInterface
	users        database.UserRepository
	pins         database.PinnedRepository
	channels     database.ChannelRepository
	loc          *i18n.Localizer

	adminIDs  []int64
	maxPinned int
}

// Deps collects the handler's collaborators.
type Deps struct {
	Bot          telegoapi.BotAPI
	Engine       *dialog.Engine
	Workflow     *moderation.Workflow
	AdminChecker auth.AdminCheckerInterface
	Users        database.UserRepository
	Pins         database.PinnedRepository
	Channels     database.ChannelRepository
	Localizer    *i18n.Localizer
	AdminIDs     []int64
	MaxPinned    int
}

func NewMessageHandler(d Deps) *MessageHandler {
	return &MessageHandler{
		bot:          d.Bot,
		engine:       d.Engine,
		workflow:     d.Workflow,
		adminChecker: d.AdminChecker,
		users:        d.Users,
		pins:         d.Pins,
		channels:     d.Channels,
		loc:          d.Localizer,
		adminIDs:     d.AdminIDs,
		maxPinned:    d.MaxPinned,
	}
}

func (h *MessageHandler) msg(id string, data map[string]interface{}) string {
	return locales.GetMessage(h.loc, id, data, nil)
}

func (h *MessageHandler) isAdmin(userID int64) bool {
	return h.adminChecker.IsAdmin(userID)
}

// recordUser refreshes the user row; listing screens and broadcasts
// depend on it. Failures are non-fatal for the update being handled.
func (h *MessageHandler) recordUser(ctx context.Context, user *telego.User) {
	if user == nil {
		return
	}
	if err := h.users.UpsertUser(ctx, user.ID, user.Username, user.FirstName, user.LastName); err != nil {
		log.Printf("[Handler User:%d] Failed to upsert user: %v", user.ID, err)
	}
}
