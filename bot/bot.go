// Package bot wraps the telego update loop: rate limiting, panic
// recovery and routing of raw updates into the handlers layer.
package bot

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"go.uber.org/ratelimit"

	"heartua-bot/internal/handlers"
	"heartua-bot/internal/locales"
	"heartua-bot/pkg/telegoapi"
)

// Bot drives the update processing loop on top of the telego long-poll
// channel.
type Bot struct {
	bot         telegoapi.BotAPI
	updatesChan <-chan telego.Update
	handler     *handlers.MessageHandler
	debug       bool
	ratelimiter ratelimit.Limiter
}

// Deps holds the dependencies required by the Bot.
type Deps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Handler     *handlers.MessageHandler
	Debug       bool
}

// New creates a Bot instance, validating its dependencies.
func New(deps Deps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}
	return &Bot{
		bot:         deps.Bot,
		updatesChan: deps.UpdatesChan,
		handler:     deps.Handler,
		debug:       deps.Debug,
		ratelimiter: ratelimit.New(20),
	}, nil
}

// Start begins the update processing loop. It blocks until the context
// is canceled or the updates channel closes.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setupCommands(ctx); err != nil {
		log.Printf("Failed to set bot commands: %v", err)
	}
	log.Println("Listening for updates...")

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			log.Println("Context done, stopping update processing...")
			wg.Wait()
			log.Println("All update processing finished.")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				log.Println("Updates channel closed.")
				wg.Wait()
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}

// processUpdate routes one update. Panics inside handlers are recovered
// and reported so a single bad update cannot take the loop down.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in processUpdate: %v\n%s", r, debug.Stack())
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case update.Message != nil:
		message := *update.Message
		if message.From == nil {
			// Channel posts from linked chats carry no sender.
			return
		}
		if b.debug {
			log.Printf("[Update User:%d Msg:%d] Processing message", message.From.ID, message.MessageID)
		}
		if err := b.handler.HandleMessage(processingCtx, message); err != nil {
			log.Printf("[Update User:%d Msg:%d] Handler error: %v", message.From.ID, message.MessageID, err)
			sentry.CaptureException(fmt.Errorf("message handler error (user %d): %w", message.From.ID, err))
		}

	case update.CallbackQuery != nil:
		query := *update.CallbackQuery
		if b.debug {
			log.Printf("[Callback User:%d QueryID:%s] Processing callback %q", query.From.ID, query.ID, query.Data)
		}
		if err := b.handler.HandleCallback(processingCtx, query); err != nil {
			log.Printf("[Callback User:%d QueryID:%s] Handler error: %v", query.From.ID, query.ID, err)
			sentry.CaptureException(fmt.Errorf("callback handler error (user %d): %w", query.From.ID, err))
		}

	default:
		if b.debug {
			log.Printf("Ignoring unhandled update type: %+v", update)
		}
	}
}

// Stop is a no-op placeholder; the loop stops via context cancellation.
func (b *Bot) Stop() {
	log.Println("Bot Stop method called. Actual stop triggered by context cancellation.")
}

func (b *Bot) setupCommands(ctx context.Context) error {
	localizer := locales.NewLocalizer(locales.DefaultLanguage)
	cmds := []telego.BotCommand{
		{Command: "start", Description: locales.GetMessage(localizer, "CmdStartDescription", nil, nil)},
		{Command: "admin", Description: locales.GetMessage(localizer, "CmdAdminDescription", nil, nil)},
	}
	if err := b.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	log.Println("Bot commands successfully set.")
	return nil
}
