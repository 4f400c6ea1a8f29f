package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"heartua-bot/internal/database"
	"heartua-bot/internal/session"
)

func TestStartUCOrder_OpensGameIDStep(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()

	err := env.engine.StartUCOrder(context.Background(), 10, 10, 0)
	require.NoError(t, err)

	state, ok := env.store.Get(10)
	require.True(t, ok)
	assert.Equal(t, session.ActionShopGameID, state.Action)
	assert.Equal(t, database.ProductUC, state.ProductType)
	assert.Equal(t, 60, state.Amount)
	assert.Equal(t, float64(38), state.Price)
}

func TestStartStarsOrder_OpensGameIDStep(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()

	err := env.engine.StartStarsOrder(context.Background(), 10, 10, 11)
	require.NoError(t, err)

	state, ok := env.store.Get(10)
	require.True(t, ok)
	assert.Equal(t, database.ProductStars, state.ProductType)
	assert.Equal(t, 2500, state.Amount)
	assert.Equal(t, float64(1900), state.Price)
}

func TestStartUCOrder_IndexOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()

	err := env.engine.StartUCOrder(context.Background(), 10, 10, 99)
	require.NoError(t, err)
	_, ok := env.store.Get(10)
	assert.False(t, ok)
}

func TestShopGameID_AdvancesToPayment(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()
	env.store.Set(10, session.State{
		Action: session.ActionShopGameID, ProductType: database.ProductUC, Amount: 60, Price: 38,
	})

	handled := env.engine.HandleMessage(context.Background(), textMessage(10, 10, "Player123"))

	assert.True(t, handled)
	state, ok := env.store.Get(10)
	require.True(t, ok)
	assert.Equal(t, session.ActionShopPayment, state.Action)
	assert.Equal(t, "Player123", state.GameID)
	assert.Equal(t, 60, state.Amount, "package fields survive the step change")
}

func TestShopPayment_MissingScreenshotKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()
	env.store.Set(10, session.State{Action: session.ActionShopPayment, ProductType: database.ProductUC, GameID: "P1"})

	handled := env.engine.HandleMessage(context.Background(), textMessage(10, 10, "оплатив"))

	assert.True(t, handled)
	_, ok := env.store.Get(10)
	assert.True(t, ok)
	env.shop.AssertNotCalled(t, "CreateShopOrder", mock.Anything, mock.Anything)
}

func TestShopPayment_CreatesPendingOrder(t *testing.T) {
	env := newTestEnv(t)
	env.expectSend()
	env.store.Set(10, session.State{
		Action: session.ActionShopPayment, ProductType: database.ProductStars,
		Amount: 100, Price: 75, GameID: "@nick",
	})

	env.shop.On("CreateShopOrder", mock.Anything, mock.MatchedBy(func(o *database.ShopOrder) bool {
		return o.UserID == 10 && o.ProductType == database.ProductStars &&
			o.Amount == 100 && o.Price == 75 && o.GameID == "@nick" &&
			o.Status == database.StatusPending &&
			o.PaymentScreenshot != nil && *o.PaymentScreenshot == "receipt"
	})).Return(int64(15), nil)
	env.notifier.On("ShopOrderSubmitted", mock.Anything, int64(15)).Return()

	handled := env.engine.HandleMessage(context.Background(), photoMessage(10, 10, "receipt", ""))

	assert.True(t, handled)
	_, ok := env.store.Get(10)
	assert.False(t, ok)
	env.notifier.AssertCalled(t, "ShopOrderSubmitted", mock.Anything, int64(15))
}
