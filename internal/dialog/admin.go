package dialog

import (
	"context"
	"log"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/session"
	"heartua-bot/pkg/telegoapi"
)

// Admin-only flows. Callers gate on the admin allow-list before opening
// these states.

// StartBroadcast opens the broadcast dialog.
func (e *Engine) StartBroadcast(ctx context.Context, chatID, userID int64) error {
	e.store.Set(userID, session.State{Action: session.ActionBroadcastMessage})
	return e.send(ctx, chatID, e.msg("MsgBroadcastPrompt", nil))
}

// StartAddChannel opens the add-required-channel dialog.
func (e *Engine) StartAddChannel(ctx context.Context, chatID, userID int64) error {
	e.store.Set(userID, session.State{Action: session.ActionAwaitingChannel})
	return e.send(ctx, chatID, e.msg("MsgAddChannelPrompt", nil))
}

// handleBroadcast fans the admin's text out to every known user with a
// throttle between sends. Per-recipient failure only bumps the failure
// count; the batch always runs to completion.
func (e *Engine) handleBroadcast(ctx context.Context, chatID, userID int64, message telego.Message) error {
	if message.Text == "" {
		return e.send(ctx, chatID, e.msg("MsgBroadcastPrompt", nil))
	}

	userIDs, err := e.users.ListUserIDs(ctx)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}
	e.store.Clear(userID)

	// A large audience outlives the per-update deadline at the throttle
	// rate, so the fan-out runs on a detached context. Once started the
	// batch always runs to completion.
	sendCtx := context.WithoutCancel(ctx)

	var success, failed int
	for _, id := range userIDs {
		e.broadcastLimiter.Take()
		if err := e.send(sendCtx, id, message.Text); err != nil {
			failed++
			log.Printf("[Broadcast Admin:%d] Send to %d failed: %v", userID, id, err)
			continue
		}
		success++
	}

	return e.send(sendCtx, chatID, e.msg("MsgBroadcastDone", map[string]interface{}{
		"Success": success,
		"Failed":  failed,
	}))
}

// handleAddChannel resolves the submitted channel id/username through
// the chat lookup and stores it. Lookup failure reports an error and
// drops the state without creating a record.
func (e *Engine) handleAddChannel(ctx context.Context, chatID, userID int64, message telego.Message) error {
	e.store.Clear(userID)
	if message.Text == "" {
		return e.send(ctx, chatID, e.msg("MsgErrorChannelLookup", nil))
	}

	chat, err := e.bot.GetChat(ctx, &telego.GetChatParams{
		ChatID: telegoapi.ChatIDFromString(message.Text),
	})
	if err != nil {
		log.Printf("[AddChannel Admin:%d] Chat lookup for %q failed: %v", userID, message.Text, err)
		return e.send(ctx, chatID, e.msg("MsgErrorChannelLookup", nil))
	}

	title := chat.Title
	if title == "" {
		title = message.Text
	}
	if err := e.channels.AddRequiredChannel(ctx, message.Text, title); err != nil {
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}

	return e.send(ctx, chatID, e.msg("MsgChannelAdded", map[string]interface{}{"Title": title}))
}
