package scheduler

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heartua-bot/internal/database"
	"heartua-bot/internal/locales"
	"heartua-bot/internal/publish"
)

func TestMain(m *testing.M) {
	locales.Init()
	os.Exit(m.Run())
}

// MockBot is a mock implementation of telegoapi.BotAPI.
type MockBot struct {
	mock.Mock
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) GetChatMember(ctx context.Context, params *telego.GetChatMemberParams) (telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if member, ok := args.Get(0).(telego.ChatMember); ok {
		return member, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error) {
	args := m.Called(ctx, params)
	if chat, ok := args.Get(0).(*telego.ChatFullInfo); ok {
		return chat, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPublisher is a mock implementation of Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithHeader(ctx context.Context, content publish.Content, header string) error {
	args := m.Called(ctx, content, header)
	return args.Error(0)
}

// MockAutopostRepo is a mock implementation of database.AutopostRepository.
type MockAutopostRepo struct {
	mock.Mock
}

func (m *MockAutopostRepo) CreateAutopostTask(ctx context.Context, t *database.AutopostTask) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAutopostRepo) ActivatePendingTask(ctx context.Context, userID, announcementID int64) (int64, error) {
	args := m.Called(ctx, userID, announcementID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAutopostRepo) ListActiveTasks(ctx context.Context, now time.Time) ([]database.AutopostTaskContent, error) {
	args := m.Called(ctx, now)
	if tasks, ok := args.Get(0).([]database.AutopostTaskContent); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAutopostRepo) MarkPosted(ctx context.Context, taskID int64, postedAt time.Time) error {
	args := m.Called(ctx, taskID, postedAt)
	return args.Error(0)
}

func (m *MockAutopostRepo) ListEndingUnnotified(ctx context.Context, from, to time.Time) ([]database.AutopostTask, error) {
	args := m.Called(ctx, from, to)
	if tasks, ok := args.Get(0).([]database.AutopostTask); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAutopostRepo) ListLastUnnotified(ctx context.Context, from, to time.Time) ([]database.AutopostTask, error) {
	args := m.Called(ctx, from, to)
	if tasks, ok := args.Get(0).([]database.AutopostTask); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAutopostRepo) ListExpiredActive(ctx context.Context, now time.Time) ([]database.AutopostTask, error) {
	args := m.Called(ctx, now)
	if tasks, ok := args.Get(0).([]database.AutopostTask); ok {
		return tasks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAutopostRepo) SetNotifiedEnding(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockAutopostRepo) SetNotifiedLast(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockAutopostRepo) ExpireTasks(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockPinnedRepo is a mock implementation of database.PinnedRepository.
type MockPinnedRepo struct {
	mock.Mock
}

func (m *MockPinnedRepo) CreatePinnedPost(ctx context.Context, p *database.PinnedPost) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPinnedRepo) CountActivePins(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockPinnedRepo) NextPinExpiry(ctx context.Context, now time.Time) (*time.Time, error) {
	args := m.Called(ctx, now)
	if t, ok := args.Get(0).(*time.Time); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPinnedRepo) ListActivePins(ctx context.Context, now time.Time) ([]database.PinnedPostWithUser, error) {
	args := m.Called(ctx, now)
	if pins, ok := args.Get(0).([]database.PinnedPostWithUser); ok {
		return pins, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPinnedRepo) ExpirePins(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type schedulerEnv struct {
	scheduler *Scheduler
	bot       *MockBot
	publisher *MockPublisher
	autopost  *MockAutopostRepo
	pins      *MockPinnedRepo
	now       time.Time
}

func newSchedulerEnv(t *testing.T) *schedulerEnv {
	t.Helper()
	env := &schedulerEnv{
		bot:       new(MockBot),
		publisher: new(MockPublisher),
		autopost:  new(MockAutopostRepo),
		pins:      new(MockPinnedRepo),
		now:       time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	env.scheduler = New(env.bot, env.publisher, env.autopost, env.pins, locales.NewLocalizer(locales.DefaultLanguage))
	env.scheduler.now = func() time.Time { return env.now }
	return env
}

func strPtr(s string) *string { return &s }

func TestRepublishActiveTasks(t *testing.T) {
	env := newSchedulerEnv(t)

	tasks := []database.AutopostTaskContent{
		{
			AutopostTask: database.AutopostTask{ID: 1, UserID: 77, Duration: 12, Status: database.StatusActive},
			Category:     "tdm",
			Text:         "шукаю тіммейтів",
		},
		{
			AutopostTask: database.AutopostTask{ID: 2, UserID: 78, Duration: 6, Status: database.StatusActive},
			Category:     "custom",
			Text:         "кастомки щовечора",
			Photo:        strPtr("file-9"),
		},
	}
	env.autopost.On("ListActiveTasks", mock.Anything, env.now).Return(tasks, nil)
	env.publisher.On("PublishWithHeader", mock.Anything, mock.MatchedBy(func(c publish.Content) bool {
		return c.Category == "tdm" && c.Photo == ""
	}), AutopostHeader).Return(nil)
	env.publisher.On("PublishWithHeader", mock.Anything, mock.MatchedBy(func(c publish.Content) bool {
		return c.Category == "custom" && c.Photo == "file-9"
	}), AutopostHeader).Return(nil)
	env.autopost.On("MarkPosted", mock.Anything, int64(1), env.now).Return(nil)
	env.autopost.On("MarkPosted", mock.Anything, int64(2), env.now).Return(nil)

	env.scheduler.RepublishActiveTasks(context.Background())

	env.publisher.AssertExpectations(t)
	env.autopost.AssertExpectations(t)
}

func TestRepublishFailureSkipsMarkPosted(t *testing.T) {
	env := newSchedulerEnv(t)

	tasks := []database.AutopostTaskContent{
		{AutopostTask: database.AutopostTask{ID: 1, UserID: 77}, Category: "tdm", Text: "перше"},
		{AutopostTask: database.AutopostTask{ID: 2, UserID: 78}, Category: "tdm", Text: "друге"},
	}
	env.autopost.On("ListActiveTasks", mock.Anything, env.now).Return(tasks, nil)
	env.publisher.On("PublishWithHeader", mock.Anything, mock.MatchedBy(func(c publish.Content) bool {
		return c.Text == "перше"
	}), AutopostHeader).Return(errors.New("flood wait"))
	env.publisher.On("PublishWithHeader", mock.Anything, mock.MatchedBy(func(c publish.Content) bool {
		return c.Text == "друге"
	}), AutopostHeader).Return(nil)
	env.autopost.On("MarkPosted", mock.Anything, int64(2), env.now).Return(nil)

	env.scheduler.RepublishActiveTasks(context.Background())

	env.autopost.AssertNotCalled(t, "MarkPosted", mock.Anything, int64(1), mock.Anything)
	env.autopost.AssertCalled(t, "MarkPosted", mock.Anything, int64(2), env.now)
}

func TestSweepExpiredPins(t *testing.T) {
	env := newSchedulerEnv(t)

	env.pins.On("ExpirePins", mock.Anything, env.now).Return(int64(2), nil)

	env.scheduler.SweepExpiredPins(context.Background())

	env.pins.AssertExpectations(t)
}

func TestSweepAutopostLifecycleWarningWindows(t *testing.T) {
	env := newSchedulerEnv(t)

	ending := []database.AutopostTask{{ID: 1, UserID: 77, Duration: 12}}
	last := []database.AutopostTask{{ID: 2, UserID: 78, Duration: 6}}

	env.autopost.On("ListEndingUnnotified", mock.Anything, env.now.Add(55*time.Minute), env.now.Add(65*time.Minute)).Return(ending, nil)
	env.autopost.On("ListLastUnnotified", mock.Anything, env.now.Add(5*time.Minute), env.now.Add(10*time.Minute)).Return(last, nil)
	env.autopost.On("ListExpiredActive", mock.Anything, env.now).Return([]database.AutopostTask{}, nil)
	env.autopost.On("ExpireTasks", mock.Anything, env.now).Return(int64(0), nil)
	env.autopost.On("SetNotifiedEnding", mock.Anything, int64(1)).Return(nil)
	env.autopost.On("SetNotifiedLast", mock.Anything, int64(2)).Return(nil)

	var texts map[int64]string = map[int64]string{}
	env.bot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(1).(*telego.SendMessageParams)
		texts[p.ChatID.ID] = p.Text
	}).Return(&telego.Message{MessageID: 1}, nil)

	env.scheduler.SweepAutopostLifecycle(context.Background())

	assert.Contains(t, texts[77], "через 1 годину")
	assert.Contains(t, texts[78], "остання публікація")
	env.autopost.AssertExpectations(t)
}

func TestSweepAutopostLifecycleCompletesExpired(t *testing.T) {
	env := newSchedulerEnv(t)

	expired := []database.AutopostTask{{ID: 3, UserID: 79, Duration: 24, Status: database.StatusActive}}

	env.autopost.On("ListEndingUnnotified", mock.Anything, mock.Anything, mock.Anything).Return([]database.AutopostTask{}, nil)
	env.autopost.On("ListLastUnnotified", mock.Anything, mock.Anything, mock.Anything).Return([]database.AutopostTask{}, nil)
	env.autopost.On("ListExpiredActive", mock.Anything, env.now).Return(expired, nil)
	env.autopost.On("ExpireTasks", mock.Anything, env.now).Return(int64(1), nil)

	var text string
	env.bot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		text = args.Get(1).(*telego.SendMessageParams).Text
	}).Return(&telego.Message{MessageID: 1}, nil)

	env.scheduler.SweepAutopostLifecycle(context.Background())

	assert.Contains(t, text, "Автопост 24 години")
	assert.Contains(t, text, "Всього публікацій: 24")
	env.autopost.AssertCalled(t, "ExpireTasks", mock.Anything, env.now)
}

func TestSweepAutopostLifecycleNotifyFailureStillMarks(t *testing.T) {
	env := newSchedulerEnv(t)

	ending := []database.AutopostTask{{ID: 1, UserID: 77, Duration: 12}}

	env.autopost.On("ListEndingUnnotified", mock.Anything, mock.Anything, mock.Anything).Return(ending, nil)
	env.autopost.On("ListLastUnnotified", mock.Anything, mock.Anything, mock.Anything).Return([]database.AutopostTask{}, nil)
	env.autopost.On("ListExpiredActive", mock.Anything, env.now).Return([]database.AutopostTask{}, nil)
	env.autopost.On("ExpireTasks", mock.Anything, env.now).Return(int64(0), nil)
	env.autopost.On("SetNotifiedEnding", mock.Anything, int64(1)).Return(nil)

	env.bot.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("blocked by user"))

	env.scheduler.SweepAutopostLifecycle(context.Background())

	env.autopost.AssertCalled(t, "SetNotifiedEnding", mock.Anything, int64(1))
}

func TestStartStop(t *testing.T) {
	env := newSchedulerEnv(t)

	env.scheduler.Start(context.Background())
	env.scheduler.Stop()

	// No ticker fired, so no repository calls happened.
	env.autopost.AssertNotCalled(t, "ListActiveTasks", mock.Anything, mock.Anything)

	require.NotPanics(t, env.scheduler.Stop)
}

func TestPeriodicJobSurvivesPanic(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	env.scheduler.runPeriodic(ctx, time.Millisecond, func(context.Context) {
		ticks.Add(1)
		panic("sweep blew up")
	})

	// The loop keeps ticking after a panicking sweep.
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	env.scheduler.wg.Wait()
}

func TestRunJobRecoversPanic(t *testing.T) {
	env := newSchedulerEnv(t)

	require.NotPanics(t, func() {
		env.scheduler.runJob(context.Background(), func(context.Context) {
			panic("sweep blew up")
		})
	})
}
