package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramDispatcher delivers reminder messages over the Bot API. It is the
// production implementation of the service layer's Dispatcher contract.
type TelegramDispatcher struct {
	api *tgbotapi.BotAPI
}

func NewTelegramDispatcher(api *tgbotapi.BotAPI) *TelegramDispatcher {
	return &TelegramDispatcher{api: api}
}

func (d *TelegramDispatcher) Send(chatID int64, message string) error {
	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := d.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
