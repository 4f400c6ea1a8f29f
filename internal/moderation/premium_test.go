package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heartua-bot/internal/database"
	"heartua-bot/internal/session"
)

func TestApprovePinService(t *testing.T) {
	env := newWorkflowEnv(t)
	svc := &database.PremiumService{
		ID:             11,
		UserID:         77,
		ServiceType:    "pin_24",
		AnnouncementID: int64Ptr(42),
		Duration:       24,
		Status:         database.StatusPending,
	}
	expires := env.now.Add(24 * time.Hour)

	env.premium.On("GetPremiumServiceByID", mock.Anything, int64(11)).Return(svc, nil)
	env.premium.On("ApprovePremiumService", mock.Anything, int64(11), env.now, expires).Return(nil)
	env.pins.On("CreatePinnedPost", mock.Anything, mock.MatchedBy(func(p *database.PinnedPost) bool {
		return p.UserID == 77 &&
			p.AnnouncementID != nil && *p.AnnouncementID == 42 &&
			p.Status == database.StatusActive &&
			p.ExpiresAt.Equal(expires)
	})).Return(int64(1), nil)

	var userText string
	env.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return p.ChatID.ID == 77
	})).Run(func(args mock.Arguments) {
		userText = args.Get(1).(*telego.SendMessageParams).Text
	}).Return(&telego.Message{MessageID: 1}, nil)
	env.expectSend()

	err := env.workflow.ApprovePremiumService(context.Background(), adminChat, 11)
	require.NoError(t, err)

	assert.Contains(t, userText, "активовано")
	env.pins.AssertExpectations(t)
	env.autopost.AssertNotCalled(t, "CreateAutopostTask", mock.Anything, mock.Anything)
}

func TestApproveAutopostServiceOpensAuthoring(t *testing.T) {
	env := newWorkflowEnv(t)
	svc := &database.PremiumService{
		ID:          12,
		UserID:      77,
		ServiceType: "autopost_12",
		Duration:    12,
		Status:      database.StatusPending,
	}
	expires := env.now.Add(12 * time.Hour)

	env.premium.On("GetPremiumServiceByID", mock.Anything, int64(12)).Return(svc, nil)
	env.premium.On("ApprovePremiumService", mock.Anything, int64(12), env.now, expires).Return(nil)
	env.autopost.On("CreateAutopostTask", mock.Anything, mock.MatchedBy(func(task *database.AutopostTask) bool {
		return task.UserID == 77 &&
			task.Duration == 12 &&
			task.Status == database.StatusPending &&
			task.AnnouncementID == nil &&
			task.ExpiresAt.Equal(expires)
	})).Return(int64(5), nil)

	var userPrompt *telego.SendMessageParams
	env.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return p.ChatID.ID == 77
	})).Run(func(args mock.Arguments) {
		userPrompt = args.Get(1).(*telego.SendMessageParams)
	}).Return(&telego.Message{MessageID: 1}, nil)
	env.expectSend()

	err := env.workflow.ApprovePremiumService(context.Background(), adminChat, 12)
	require.NoError(t, err)

	// The buyer is now in the authoring dialog, category first.
	state, ok := env.store.Get(77)
	require.True(t, ok)
	assert.Equal(t, session.ActionSelectCategory, state.Action)
	assert.Equal(t, "autopost_12", state.ServiceKey)
	assert.Equal(t, int64(12), state.PremiumServiceID)

	require.NotNil(t, userPrompt)
	assert.Contains(t, userPrompt.Text, "Автопост 12 годин")
	assert.NotNil(t, userPrompt.ReplyMarkup)

	env.pins.AssertNotCalled(t, "CreatePinnedPost", mock.Anything, mock.Anything)
}

func TestApprovePremiumServiceNotFound(t *testing.T) {
	env := newWorkflowEnv(t)

	env.premium.On("GetPremiumServiceByID", mock.Anything, int64(99)).Return(nil, database.ErrNotFound)

	var adminText string
	env.bot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		adminText = args.Get(1).(*telego.SendMessageParams).Text
	}).Return(&telego.Message{MessageID: 1}, nil)

	err := env.workflow.ApprovePremiumService(context.Background(), adminChat, 99)
	require.NoError(t, err)

	assert.Contains(t, adminText, "не знайдено")
	env.premium.AssertNotCalled(t, "ApprovePremiumService", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectPremiumService(t *testing.T) {
	env := newWorkflowEnv(t)
	svc := &database.PremiumService{
		ID:          11,
		UserID:      77,
		ServiceType: "pin_24",
		Duration:    24,
		Status:      database.StatusPending,
	}

	env.premium.On("GetPremiumServiceByID", mock.Anything, int64(11)).Return(svc, nil)
	env.premium.On("RejectPremiumService", mock.Anything, int64(11)).Return(nil)

	var userText string
	env.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return p.ChatID.ID == 77
	})).Run(func(args mock.Arguments) {
		userText = args.Get(1).(*telego.SendMessageParams).Text
	}).Return(&telego.Message{MessageID: 1}, nil)
	env.expectSend()

	err := env.workflow.RejectPremiumService(context.Background(), adminChat, 11)
	require.NoError(t, err)

	assert.Contains(t, userText, "відхилено")
	env.pins.AssertNotCalled(t, "CreatePinnedPost", mock.Anything, mock.Anything)

	// No authoring dialog opens for a rejected purchase.
	_, ok := env.store.Get(77)
	assert.False(t, ok)
}

func TestApprovePremiumServiceStaleCard(t *testing.T) {
	env := newWorkflowEnv(t)
	svc := &database.PremiumService{
		ID:             11,
		UserID:         77,
		ServiceType:    "pin_24",
		AnnouncementID: int64Ptr(42),
		Duration:       24,
		Status:         database.StatusApproved,
	}
	expires := env.now.Add(24 * time.Hour)

	env.premium.On("GetPremiumServiceByID", mock.Anything, int64(11)).Return(svc, nil)
	// The pending guard refuses an already-decided service.
	env.premium.On("ApprovePremiumService", mock.Anything, int64(11), env.now, expires).Return(database.ErrNotFound)

	var adminText string
	env.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return p.ChatID.ID == adminChat
	})).Run(func(args mock.Arguments) {
		adminText = args.Get(1).(*telego.SendMessageParams).Text
	}).Return(&telego.Message{MessageID: 1}, nil)

	err := env.workflow.ApprovePremiumService(context.Background(), adminChat, 11)
	require.NoError(t, err)

	assert.Contains(t, adminText, "не знайдено")
	// No second grant for the stale click.
	env.pins.AssertNotCalled(t, "CreatePinnedPost", mock.Anything, mock.Anything)
	env.autopost.AssertNotCalled(t, "CreateAutopostTask", mock.Anything, mock.Anything)
	_, ok := env.store.Get(77)
	assert.False(t, ok)
}
