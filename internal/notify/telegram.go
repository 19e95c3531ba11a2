// Package notify pushes host notifications through the Telegram Bot
// API. Delivery is best-effort: a missing token or a failed send never
// blocks the room flow.
package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"roundtable/backend/internal/models"
)

// TelegramNotifier sends the final report summary to a configured chat
// when a room ends.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifierFromEnv builds the notifier from TELEGRAM_BOT_TOKEN
// and TELEGRAM_HOST_CHAT_ID. Returns nil when either is unset, which
// disables notifications entirely.
func NewTelegramNotifierFromEnv() *TelegramNotifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chat := os.Getenv("TELEGRAM_HOST_CHAT_ID")
	if token == "" || chat == "" {
		log.Println("Warning: Telegram notifications disabled (TELEGRAM_BOT_TOKEN or TELEGRAM_HOST_CHAT_ID not set)")
		return nil
	}

	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		log.Printf("ERROR: Invalid TELEGRAM_HOST_CHAT_ID %q: %v", chat, err)
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("ERROR: Could not connect to Telegram: %v", err)
		return nil
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// ResultsReady sends the ranked summary for a finished room.
func (n *TelegramNotifier) ResultsReady(rep *models.Report) {
	msg := tgbotapi.NewMessage(n.chatID, formatReport(rep))
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("ERROR: Could not send report notification for room %s: %v", rep.RoomCode, err)
	}
}

func formatReport(rep *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Room %s finished\n", rep.RoomCode)
	fmt.Fprintf(&b, "Topic: %s (%s, %d rounds)\n\n", rep.Topic, rep.Mode, rep.Rounds)
	for _, res := range rep.Results {
		if res.Status == models.ResultSilent {
			fmt.Fprintf(&b, "%d. %s: silent\n", res.Rank, res.Name)
			continue
		}
		fmt.Fprintf(&b, "%d. %s: %.1f\n", res.Rank, res.Name, res.WeightedScore)
	}
	return b.String()
}
