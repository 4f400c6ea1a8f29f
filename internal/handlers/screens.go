package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"heartua-bot/internal/callback"
	"heartua-bot/internal/dialog"
)

const pinExpiryFormat = "02.01.2006 15:04"

func (h *MessageHandler) showCategoryMenu(ctx context.Context, chatID int64) error {
	return h.sendInline(ctx, chatID, h.msg("MsgChooseCategory", nil), dialog.CategoryKeyboard(h.loc))
}

func (h *MessageHandler) showOfficialChannels(ctx context.Context, chatID int64) error {
	markup := tu.InlineKeyboard(
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("❤️ HeartUA Official").WithURL("https://t.me/HeartUA_official")),
		tu.InlineKeyboardRow(tu.InlineKeyboardButton("🎮 Heart Ukraine PUBG").WithURL("https://t.me/HeartUkrainePUBG")),
	)
	return h.sendInline(ctx, chatID, h.msg("MsgOfficialChannels", nil), markup)
}

func (h *MessageHandler) showAdminContacts(ctx context.Context, chatID int64) error {
	var b strings.Builder
	b.WriteString(h.msg("MsgAdminsHeader", nil))
	for i, id := range h.adminIDs {
		b.WriteString(h.msg("MsgAdminsLine", map[string]interface{}{"Index": i + 1, "ID": id}))
	}
	b.WriteString(h.msg("MsgAdminsFooter", nil))
	return h.send(ctx, chatID, b.String())
}

// showChannelsScreen lists the required channels with per-channel remove
// buttons. Also re-shown after a removal so the admin sees the result.
func (h *MessageHandler) showChannelsScreen(ctx context.Context, chatID int64) error {
	channels, err := h.channels.ListRequiredChannels(ctx)
	if err != nil {
		return err
	}

	var rows [][]telego.InlineKeyboardButton
	text := h.msg("MsgChannelsEmpty", nil)
	if len(channels) > 0 {
		var b strings.Builder
		b.WriteString(h.msg("MsgChannelsHeader", nil))
		for _, ch := range channels {
			b.WriteString(h.msg("MsgChannelsLine", map[string]interface{}{"Name": ch.ChannelName, "ID": ch.ChannelID}))
			rows = append(rows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("🗑️ "+ch.ChannelName).WithCallbackData(callback.RemoveChannelData(ch.ChannelID)),
			))
		}
		text = b.String()
	}
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(h.msg("BtnAddChannel", nil)).WithCallbackData("add_channel"),
	))
	rows = append(rows, tu.InlineKeyboardRow(
		tu.InlineKeyboardButton(h.msg("BtnBack", nil)).WithCallbackData("cancel"),
	))

	return h.sendInline(ctx, chatID, text, tu.InlineKeyboard(rows...))
}

func (h *MessageHandler) showUsersScreen(ctx context.Context, chatID int64) error {
	users, err := h.users.ListRecentUsers(ctx, 20)
	if err != nil {
		return err
	}
	total, err := h.users.CountUsers(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(h.msg("MsgUsersHeader", nil))
	for i := range users {
		u := &users[i]
		name := u.DisplayName()
		if name == "" {
			name = "—"
		}
		b.WriteString(h.msg("MsgUsersLine", map[string]interface{}{"Index": i + 1, "Name": name, "ID": u.ID}))
	}
	b.WriteString(h.msg("MsgUsersTotal", map[string]interface{}{"Count": total}))
	return h.send(ctx, chatID, b.String())
}

func (h *MessageHandler) showPinnedScreen(ctx context.Context, chatID int64) error {
	pins, err := h.pins.ListActivePins(ctx, time.Now())
	if err != nil {
		return err
	}

	if len(pins) == 0 {
		return h.send(ctx, chatID, h.msg("MsgPinnedEmpty", map[string]interface{}{"Max": h.maxPinned}))
	}

	var b strings.Builder
	b.WriteString(h.msg("MsgPinnedHeader", map[string]interface{}{"Count": len(pins), "Max": h.maxPinned}))
	for i := range pins {
		p := &pins[i]
		name := p.User.DisplayName()
		if name == "" {
			name = "—"
		}
		b.WriteString(h.msg("MsgPinnedLine", map[string]interface{}{
			"Index":     i + 1,
			"Name":      name,
			"ExpiresAt": p.ExpiresAt.Format(pinExpiryFormat),
		}))
	}
	return h.send(ctx, chatID, b.String())
}
