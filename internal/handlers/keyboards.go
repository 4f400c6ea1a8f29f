package handlers

import (
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Reply-keyboard button labels. Menu dispatch compares raw message text
// against these, so the labels double as the routing keys.
const (
	BtnAnnouncements    = "📢 Оголошення"
	BtnPremium          = "💎 Преміум-послуги"
	BtnShop             = "🛒 Магазин"
	BtnOfficialChannels = "📺 Наші офіційні канали"
	BtnHelp             = "❓ Допомога"
	BtnAdmins           = "👨‍💼 Адміни"

	BtnModeration = "📋 Модерація"
	BtnChannels   = "📺 Канали"
	BtnUsers      = "👥 Користувачі"
	BtnPinned     = "📌 Закріпи"
	BtnBroadcast  = "📨 Розсилка"
	BtnToMainMenu = "🔙 Головне меню"
)

// MainMenuKeyboard is the persistent reply keyboard every user gets.
func MainMenuKeyboard() *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(tu.KeyboardButton(BtnAnnouncements), tu.KeyboardButton(BtnPremium)),
		tu.KeyboardRow(tu.KeyboardButton(BtnShop), tu.KeyboardButton(BtnOfficialChannels)),
		tu.KeyboardRow(tu.KeyboardButton(BtnHelp), tu.KeyboardButton(BtnAdmins)),
	).WithResizeKeyboard()
}

// AdminMenuKeyboard is the reply keyboard shown after /admin.
func AdminMenuKeyboard() *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(tu.KeyboardButton(BtnModeration), tu.KeyboardButton(BtnChannels)),
		tu.KeyboardRow(tu.KeyboardButton(BtnUsers), tu.KeyboardButton(BtnPinned)),
		tu.KeyboardRow(tu.KeyboardButton(BtnBroadcast), tu.KeyboardButton(BtnToMainMenu)),
	).WithResizeKeyboard()
}
