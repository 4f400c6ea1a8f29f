package handlers

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// HandleMessage processes one inbound message: commands first, then the
// user's open dialog, then menu buttons.
func (h *MessageHandler) HandleMessage(ctx context.Context, message telego.Message) error {
	if message.From == nil {
		return nil
	}
	h.recordUser(ctx, message.From)
	userID := message.From.ID
	chatID := message.Chat.ID

	// Forum messages carry the topic ID admins need for category config.
	if message.MessageThreadID != 0 && h.isAdmin(userID) {
		if err := h.send(ctx, chatID, h.msg("MsgThreadIDHint", map[string]interface{}{"ThreadID": message.MessageThreadID})); err != nil {
			return err
		}
	}

	if strings.HasPrefix(message.Text, "/") {
		return h.handleCommand(ctx, message)
	}

	if h.engine.HandleMessage(ctx, message) {
		return nil
	}

	return h.handleMenuButton(ctx, chatID, userID, message.Text)
}

func (h *MessageHandler) handleCommand(ctx context.Context, message telego.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	cmd := message.Text
	if cut := strings.IndexAny(cmd, " @"); cut > 0 {
		cmd = cmd[:cut]
	}

	switch cmd {
	case "/start":
		text := h.msg("MsgWelcome", nil)
		if h.isAdmin(userID) {
			text += h.msg("MsgWelcomeAdminSuffix", nil)
		}
		return h.sendWithKeyboard(ctx, chatID, text, MainMenuKeyboard())
	case "/admin":
		if !h.isAdmin(userID) {
			return h.send(ctx, chatID, h.msg("MsgErrorNoAdminAccess", nil))
		}
		return h.sendWithKeyboard(ctx, chatID, h.msg("MsgAdminPanel", nil), AdminMenuKeyboard())
	}

	// Unknown commands fall back to the main menu.
	return h.sendWithKeyboard(ctx, chatID, h.msg("MsgMainMenuTitle", nil), MainMenuKeyboard())
}

func (h *MessageHandler) handleMenuButton(ctx context.Context, chatID, userID int64, text string) error {
	switch text {
	case BtnAnnouncements:
		return h.showCategoryMenu(ctx, chatID)
	case BtnPremium:
		return h.engine.ShowPremiumMenu(ctx, chatID)
	case BtnShop:
		return h.engine.ShowShopMenu(ctx, chatID)
	case BtnOfficialChannels:
		return h.showOfficialChannels(ctx, chatID)
	case BtnHelp:
		return h.send(ctx, chatID, h.msg("MsgHelp", nil))
	case BtnAdmins:
		return h.showAdminContacts(ctx, chatID)
	case BtnToMainMenu:
		return h.sendWithKeyboard(ctx, chatID, h.msg("MsgMainMenuTitle", nil), MainMenuKeyboard())
	}

	if h.isAdmin(userID) {
		switch text {
		case BtnModeration:
			return h.workflow.ShowModerationQueue(ctx, chatID)
		case BtnChannels:
			return h.showChannelsScreen(ctx, chatID)
		case BtnUsers:
			return h.showUsersScreen(ctx, chatID)
		case BtnPinned:
			return h.showPinnedScreen(ctx, chatID)
		case BtnBroadcast:
			return h.engine.StartBroadcast(ctx, chatID, userID)
		}
	}

	// Anything else is ignored, same as stray chatter in a group.
	return nil
}

func (h *MessageHandler) send(ctx context.Context, chatID int64, text string) error {
	_, err := h.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	return err
}

func (h *MessageHandler) sendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *telego.ReplyKeyboardMarkup) error {
	_, err := h.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(keyboard))
	return err
}

func (h *MessageHandler) sendInline(ctx context.Context, chatID int64, text string, markup *telego.InlineKeyboardMarkup) error {
	_, err := h.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(markup))
	return err
}
