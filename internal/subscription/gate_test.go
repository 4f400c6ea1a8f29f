package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heartua-bot/internal/database"
)

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

// MockChannelRepo is a mock implementation of database.ChannelRepository.
type MockChannelRepo struct {
	mock.Mock
}

func (m *MockChannelRepo) AddRequiredChannel(ctx context.Context, channelID, channelName string) error {
	args := m.Called(ctx, channelID, channelName)
	return args.Error(0)
}

func (m *MockChannelRepo) RemoveRequiredChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelRepo) ListRequiredChannels(ctx context.Context) ([]database.RequiredChannel, error) {
	args := m.Called(ctx)
	if chans, ok := args.Get(0).([]database.RequiredChannel); ok {
		return chans, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGate_NoChannelsConfigured(t *testing.T) {
	bot := new(MockBot)
	repo := new(MockChannelRepo)
	repo.On("ListRequiredChannels", mock.Anything).Return([]database.RequiredChannel{}, nil)

	gate := NewGate(bot, repo)
	missing, err := gate.Check(context.Background(), 100)

	require.NoError(t, err)
	assert.Empty(t, missing)
	bot.AssertNotCalled(t, "GetChatMember", mock.Anything, mock.Anything)
}

func TestGate_MemberPasses(t *testing.T) {
	bot := new(MockBot)
	repo := new(MockChannelRepo)
	repo.On("ListRequiredChannels", mock.Anything).Return([]database.RequiredChannel{
		{ChannelID: "@heart_ua", ChannelName: "HEART UA"},
	}, nil)
	bot.On("GetChatMember", mock.Anything, mock.MatchedBy(func(p *telego.GetChatMemberParams) bool {
		return p.ChatID.Username == "@heart_ua" && p.UserID == 100
	})).Return(telego.ChatMember(&telego.ChatMemberMember{Status: telego.MemberStatusMember}), nil)

	gate := NewGate(bot, repo)
	missing, err := gate.Check(context.Background(), 100)

	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGate_LeftAndBannedAreMissing(t *testing.T) {
	bot := new(MockBot)
	repo := new(MockChannelRepo)
	repo.On("ListRequiredChannels", mock.Anything).Return([]database.RequiredChannel{
		{ChannelID: "@one"},
		{ChannelID: "@two"},
		{ChannelID: "@three"},
	}, nil)
	bot.On("GetChatMember", mock.Anything, mock.MatchedBy(func(p *telego.GetChatMemberParams) bool {
		return p.ChatID.Username == "@one"
	})).Return(telego.ChatMember(&telego.ChatMemberLeft{Status: telego.MemberStatusLeft}), nil)
	bot.On("GetChatMember", mock.Anything, mock.MatchedBy(func(p *telego.GetChatMemberParams) bool {
		return p.ChatID.Username == "@two"
	})).Return(telego.ChatMember(&telego.ChatMemberBanned{Status: telego.MemberStatusBanned}), nil)
	bot.On("GetChatMember", mock.Anything, mock.MatchedBy(func(p *telego.GetChatMemberParams) bool {
		return p.ChatID.Username == "@three"
	})).Return(telego.ChatMember(&telego.ChatMemberMember{Status: telego.MemberStatusMember}), nil)

	gate := NewGate(bot, repo)
	missing, err := gate.Check(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "@one", missing[0].ChannelID)
	assert.Equal(t, "@two", missing[1].ChannelID)
}

func TestGate_LookupErrorCountsAsMissing(t *testing.T) {
	bot := new(MockBot)
	repo := new(MockChannelRepo)
	repo.On("ListRequiredChannels", mock.Anything).Return([]database.RequiredChannel{
		{ChannelID: "-100123"},
	}, nil)
	bot.On("GetChatMember", mock.Anything, mock.Anything).Return(nil, errors.New("bad request"))

	gate := NewGate(bot, repo)
	missing, err := gate.Check(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "-100123", missing[0].ChannelID)
}

func TestGate_RepoError(t *testing.T) {
	bot := new(MockBot)
	repo := new(MockChannelRepo)
	repo.On("ListRequiredChannels", mock.Anything).Return(nil, errors.New("db down"))

	gate := NewGate(bot, repo)
	_, err := gate.Check(context.Background(), 100)
	assert.Error(t, err)
}
