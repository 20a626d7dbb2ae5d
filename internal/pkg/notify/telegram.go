package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"stockroom/internal/domain"
)

// Sender é satisfeito por *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier envia os eventos como mensagens para um chat administrativo.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

// NewTelegramNotifier cria um TelegramNotifier para o chat informado.
func NewTelegramNotifier(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// NewTelegramBot conecta na API do Telegram com o token do bot.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no Telegram: %w", err)
	}
	return bot, nil
}

func (n *TelegramNotifier) RequestApproved(_ context.Context, req domain.Request) error {
	return n.send(requestText("✅ Requisição aprovada", req))
}

func (n *TelegramNotifier) RequestReturned(_ context.Context, req domain.Request) error {
	return n.send(requestText("↩️ Requisição devolvida", req))
}

func (n *TelegramNotifier) LowStock(_ context.Context, c domain.Component) error {
	return n.send("⚠️ " + lowStockText(c))
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("falha ao enviar mensagem no Telegram: %w", err)
	}
	return nil
}
