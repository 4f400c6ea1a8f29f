// Package scheduler runs the periodic background jobs: hourly autopost
// republication, pin-slot expiry and the autopost lifecycle sweep that
// warns users and closes out finished tasks.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/publish"
	"heartua-bot/pkg/telegoapi"
)

// AutopostHeader prefixes every scheduled republication.
const AutopostHeader = "🔄 Автопост\n"

const (
	republishInterval = time.Hour
	pinSweepInterval  = 30 * time.Minute
	taskSweepInterval = 5 * time.Minute
)

// Publisher posts autopost content to the channel.
type Publisher interface {
	PublishWithHeader(ctx context.Context, content publish.Content, header string) error
}

// Scheduler drives the three periodic jobs. Jobs share a frozen "now"
// per sweep so window math inside one pass is consistent.
type Scheduler struct {
	bot       telegoapi.BotAPI
	publisher Publisher
	autopost  database.AutopostRepository
	pins      database.PinnedRepository
	loc       *i18n.Localizer

	now    func() time.Time
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(bot telegoapi.BotAPI, publisher Publisher, autopost database.AutopostRepository, pins database.PinnedRepository, loc *i18n.Localizer) *Scheduler {
	return &Scheduler{
		bot:       bot,
		publisher: publisher,
		autopost:  autopost,
		pins:      pins,
		loc:       loc,
		now:       time.Now,
	}
}

// Start launches the periodic jobs. They stop when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.runPeriodic(ctx, republishInterval, s.RepublishActiveTasks)
	s.runPeriodic(ctx, pinSweepInterval, s.SweepExpiredPins)
	s.runPeriodic(ctx, taskSweepInterval, s.SweepAutopostLifecycle)

	log.Println("Scheduler started")
}

// Stop cancels the jobs and waits for in-flight sweeps to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runPeriodic(ctx context.Context, interval time.Duration, job func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runJob(ctx, job)
			}
		}
	}()
}

// runJob recovers per tick so one panicking sweep does not kill the
// periodic loop.
func (s *Scheduler) runJob(ctx context.Context, job func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			log.Printf("[Scheduler] Job panic recovered: %v", r)
		}
	}()
	job(ctx)
}

// RepublishActiveTasks posts every active autopost announcement once
// more. One failing task does not stop the rest.
func (s *Scheduler) RepublishActiveTasks(ctx context.Context) {
	now := s.now()
	tasks, err := s.autopost.ListActiveTasks(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Failed to list active autopost tasks: %v", err)
		return
	}

	for _, task := range tasks {
		content := publish.Content{
			Category: task.Category,
			Text:     task.Text,
			Entities: task.Entities,
		}
		if task.Photo != nil {
			content.Photo = *task.Photo
		}
		if err := s.publisher.PublishWithHeader(ctx, content, AutopostHeader); err != nil {
			log.Printf("[Scheduler Task:%d] Republish failed: %v", task.ID, err)
			continue
		}
		if err := s.autopost.MarkPosted(ctx, task.ID, now); err != nil {
			log.Printf("[Scheduler Task:%d] Failed to mark posted: %v", task.ID, err)
		}
	}
}

// SweepExpiredPins frees up pin slots past their expiry.
func (s *Scheduler) SweepExpiredPins(ctx context.Context) {
	n, err := s.pins.ExpirePins(ctx, s.now())
	if err != nil {
		log.Printf("[Scheduler] Failed to expire pins: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Scheduler] Expired %d pinned posts", n)
	}
}

// SweepAutopostLifecycle sends the one-hour and five-minute warnings,
// notifies owners of finished tasks and expires them. Each warning goes
// out at most once per task.
func (s *Scheduler) SweepAutopostLifecycle(ctx context.Context) {
	now := s.now()

	ending, err := s.autopost.ListEndingUnnotified(ctx, now.Add(55*time.Minute), now.Add(65*time.Minute))
	if err != nil {
		log.Printf("[Scheduler] Failed to list ending tasks: %v", err)
	} else {
		for _, task := range ending {
			s.notifyOwner(ctx, task.UserID, locales.GetMessage(s.loc, "MsgAutopostEndingSoon", nil, nil))
			if err := s.autopost.SetNotifiedEnding(ctx, task.ID); err != nil {
				log.Printf("[Scheduler Task:%d] Failed to mark ending-notified: %v", task.ID, err)
			}
		}
	}

	last, err := s.autopost.ListLastUnnotified(ctx, now.Add(5*time.Minute), now.Add(10*time.Minute))
	if err != nil {
		log.Printf("[Scheduler] Failed to list last-run tasks: %v", err)
	} else {
		for _, task := range last {
			s.notifyOwner(ctx, task.UserID, locales.GetMessage(s.loc, "MsgAutopostLastSoon", nil, nil))
			if err := s.autopost.SetNotifiedLast(ctx, task.ID); err != nil {
				log.Printf("[Scheduler Task:%d] Failed to mark last-notified: %v", task.ID, err)
			}
		}
	}

	expired, err := s.autopost.ListExpiredActive(ctx, now)
	if err != nil {
		log.Printf("[Scheduler] Failed to list expired tasks: %v", err)
		return
	}
	for _, task := range expired {
		s.notifyOwner(ctx, task.UserID, locales.GetMessage(s.loc, "MsgAutopostCompleted", map[string]interface{}{
			"Name":  taskServiceName(task.Duration),
			"Total": task.Duration,
		}, nil))
	}

	if _, err := s.autopost.ExpireTasks(ctx, now); err != nil {
		log.Printf("[Scheduler] Failed to expire tasks: %v", err)
	}
}

func (s *Scheduler) notifyOwner(ctx context.Context, userID int64, text string) {
	if _, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(userID), text)); err != nil {
		log.Printf("[Scheduler User:%d] Notify failed: %v", userID, err)
	}
}

// taskServiceName maps a task duration back to its catalog entry name.
func taskServiceName(duration int) string {
	key := fmt.Sprintf("autopost_%d", duration)
	if svc, ok := config.PremiumServiceByKey(key); ok {
		return svc.Name
	}
	return key
}
