package handlers

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heartua-bot/internal/database"
	"heartua-bot/internal/session"
)

func TestCallbackCategorySelection(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)

	var sent *telego.SendMessageParams
	env.bot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*telego.SendMessageParams)
	}).Return(&telego.Message{MessageID: 1}, nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(1, "category_tdm"))
	require.NoError(t, err)

	state, ok := env.store.Get(1)
	require.True(t, ok)
	assert.Equal(t, session.ActionAwaitingText, state.Action)
	assert.Equal(t, "tdm", state.Category)
	assert.Contains(t, sent.Text, "⚔️ TDM")
	env.bot.AssertCalled(t, "AnswerCallbackQuery", mock.Anything, mock.Anything)
}

func TestCallbackModerationIgnoredForNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(1, "approve_ann_42"))
	require.NoError(t, err)

	env.anns.AssertNotCalled(t, "GetAnnouncementByID", mock.Anything, mock.Anything)
	env.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestCallbackApproveShopAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)
	env.expectSend()

	order := &database.ShopOrder{ID: 7, UserID: 88, ProductType: database.ProductUC, Amount: 60, Price: 38, Status: database.StatusPending}
	env.shop.On("GetShopOrderByID", mock.Anything, int64(7)).Return(order, nil)
	env.shop.On("CompleteShopOrder", mock.Anything, int64(7), mock.Anything).Return(nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(adminID, "approve_shop_7"))
	require.NoError(t, err)

	env.shop.AssertExpectations(t)
}

func TestCallbackRemoveChannelReshowsScreen(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)
	env.expectSend()

	env.channels.On("RemoveRequiredChannel", mock.Anything, "@old").Return(nil)
	env.channels.On("ListRequiredChannels", mock.Anything).Return([]database.RequiredChannel{}, nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(adminID, "remove_channel_@old"))
	require.NoError(t, err)

	env.channels.AssertExpectations(t)
}

func TestCallbackUnknownDataIsAcknowledgedAndDropped(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(1, "bogus_data"))
	require.NoError(t, err)

	env.bot.AssertCalled(t, "AnswerCallbackQuery", mock.Anything, mock.Anything)
	env.bot.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestCallbackShopNavigation(t *testing.T) {
	env := newTestEnv(t)
	env.expectUpsert()
	env.bot.On("AnswerCallbackQuery", mock.Anything, mock.Anything).Return(nil)

	var sent *telego.SendMessageParams
	env.bot.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*telego.SendMessageParams)
	}).Return(&telego.Message{MessageID: 1}, nil)

	err := env.handler.HandleCallback(context.Background(), callbackQuery(1, "shop_uc"))
	require.NoError(t, err)

	assert.Contains(t, sent.Text, "Магазин UC")
	markup, ok := sent.ReplyMarkup.(*telego.InlineKeyboardMarkup)
	require.True(t, ok)
	// Seventeen bundles plus the back row.
	assert.Len(t, markup.InlineKeyboard, 18)
}
