package dialog

import (
	"context"

	"github.com/mymmrac/telego"

	"heartua-bot/internal/config"
	"heartua-bot/internal/database"
	"heartua-bot/internal/session"
)

// ShowShopMenu presents the shop's product lines.
func (e *Engine) ShowShopMenu(ctx context.Context, chatID int64) error {
	return e.sendMarkup(ctx, chatID, e.msg("MsgShopMenu", nil), ShopMenuKeyboard(e.loc))
}

// ShowUCShop lists the UC bundles.
func (e *Engine) ShowUCShop(ctx context.Context, chatID int64) error {
	return e.sendMarkup(ctx, chatID, e.msg("MsgUCShopTitle", nil), UCPackagesKeyboard(e.loc))
}

// ShowStarsShop lists the Stars bundles.
func (e *Engine) ShowStarsShop(ctx context.Context, chatID int64) error {
	return e.sendMarkup(ctx, chatID, e.msg("MsgStarsShopTitle", nil), StarsPackagesKeyboard(e.loc))
}

// StartUCOrder opens a UC purchase for the bundle at the given catalog
// index and asks for the player's game ID.
func (e *Engine) StartUCOrder(ctx context.Context, chatID, userID int64, index int) error {
	if index < 0 || index >= len(config.UCPackages) {
		return e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil))
	}
	pkg := config.UCPackages[index]

	e.store.Set(userID, session.State{
		Action:      session.ActionShopGameID,
		ProductType: database.ProductUC,
		Amount:      pkg.Amount,
		Price:       float64(pkg.Price),
	})
	return e.send(ctx, chatID, e.msg("MsgUCOrderPrompt", map[string]interface{}{
		"Amount": pkg.Amount,
		"Price":  pkg.Price,
	}))
}

// StartStarsOrder opens a Stars purchase for the bundle at the given
// catalog index.
func (e *Engine) StartStarsOrder(ctx context.Context, chatID, userID int64, index int) error {
	if index < 0 || index >= len(config.StarsPackages) {
		return e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil))
	}
	pkg := config.StarsPackages[index]

	e.store.Set(userID, session.State{
		Action:      session.ActionShopGameID,
		ProductType: database.ProductStars,
		Amount:      pkg.Amount,
		Price:       float64(pkg.Price),
	})
	return e.send(ctx, chatID, e.msg("MsgStarsOrderPrompt", map[string]interface{}{
		"Amount": pkg.Amount,
		"Price":  pkg.Price,
	}))
}

func (e *Engine) handleShopGameID(ctx context.Context, chatID, userID int64, state session.State, message telego.Message) error {
	if message.Text == "" {
		return e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil))
	}

	state.GameID = message.Text
	state.Action = session.ActionShopPayment
	e.store.Set(userID, state)

	return e.send(ctx, chatID, e.msg("MsgShopPaymentPrompt", map[string]interface{}{
		"PaymentInfo": config.PaymentInfo,
	}))
}

func (e *Engine) handleShopScreenshot(ctx context.Context, chatID, userID int64, state session.State, message telego.Message) error {
	if len(message.Photo) == 0 {
		return e.send(ctx, chatID, e.msg("MsgErrorScreenshotRequired", nil))
	}
	screenshot := message.Photo[len(message.Photo)-1].FileID

	order := &database.ShopOrder{
		UserID:            userID,
		ProductType:       state.ProductType,
		Amount:            state.Amount,
		Price:             state.Price,
		GameID:            state.GameID,
		PaymentScreenshot: &screenshot,
		Status:            database.StatusPending,
	}
	id, err := e.shop.CreateShopOrder(ctx, order)
	if err != nil {
		e.store.Clear(userID)
		if sendErr := e.send(ctx, chatID, e.msg("MsgErrorGeneral", nil)); sendErr != nil {
			return sendErr
		}
		return err
	}

	e.store.Clear(userID)
	if err := e.send(ctx, chatID, e.msg("MsgShopOrderSubmitted", nil)); err != nil {
		return err
	}
	e.notifier.ShopOrderSubmitted(ctx, id)
	return nil
}
