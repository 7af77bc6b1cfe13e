package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/health-tracker/internal/bot/state"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

const helpText = `Các lệnh:
/start - Hiện menu chính
/today - Chỉ số hôm nay
/month - Số bản ghi trong tháng
/warnings - Cảnh báo trong tháng
/help - Hiện hướng dẫn này

Cách ghi chỉ số:
1. Bấm "📝 Ghi chỉ số"
2. Chọn loại chỉ số
3. Gửi một số, ví dụ: 72 hoặc 97,5`

// CommandHandler handles bot commands
type CommandHandler struct {
	api          BotAPI
	reports      reporter
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		reports:      reporter{deps: deps},
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	logger.Info("Handling command", "command", message.Command(), "user_id", message.From.ID)

	switch message.Command() {
	case "start":
		h.stateManager.ClearUserState(message.From.ID)
		h.stateManager.ClearTempData(message.From.ID)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "help":
		return h.send(message.Chat.ID, helpText)
	case "today":
		return h.report(ctx, message.Chat.ID, h.reports.today)
	case "month":
		return h.report(ctx, message.Chat.ID, h.reports.month)
	case "warnings":
		return h.report(ctx, message.Chat.ID, h.reports.warnings)
	default:
		return h.send(message.Chat.ID, "Lệnh không hợp lệ. Dùng /help để xem các lệnh.")
	}
}

func (h *CommandHandler) report(ctx context.Context, chatID int64, build func(context.Context) (string, error)) error {
	text, err := build(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to build report", "chat_id", chatID, "error", err)
		return h.send(chatID, reportFailedText)
	}
	return menus.SendReport(h.api, chatID, text)
}

func (h *CommandHandler) send(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
