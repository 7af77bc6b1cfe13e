package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/health-tracker/internal/bot/state"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

const reportFailedText = "❌ Không lấy được dữ liệu, vui lòng thử lại sau."

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          BotAPI
	reports      reporter
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		reports:      reporter{deps: deps},
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return err
	}

	chatID := query.Message.Chat.ID
	userID := query.From.ID

	if strings.HasPrefix(query.Data, keyboards.LogPrefix) {
		return h.handleActivityType(chatID, userID, domain.ActivityType(strings.TrimPrefix(query.Data, keyboards.LogPrefix)))
	}

	switch query.Data {
	case keyboards.LogValue:
		return menus.SendActivityTypeMenu(h.api, chatID)
	case keyboards.Today:
		return h.report(ctx, chatID, h.reports.today)
	case keyboards.Month:
		return h.report(ctx, chatID, h.reports.month)
	case keyboards.Warnings:
		return h.report(ctx, chatID, h.reports.warnings)
	case keyboards.Home:
		h.stateManager.ClearUserState(userID)
		h.stateManager.ClearTempData(userID)
		return menus.SendMainMenu(h.api, chatID)
	default:
		return h.send(chatID, "Thao tác không hợp lệ.")
	}
}

// handleActivityType remembers the chosen type and waits for a value
func (h *CallbackHandler) handleActivityType(chatID, userID int64, activityType domain.ActivityType) error {
	if !activityType.Valid() {
		return h.send(chatID, "Loại chỉ số không hợp lệ.")
	}

	h.stateManager.SetUserState(userID, state.WaitingForValue)
	h.stateManager.SetTempData(userID, state.KeyActivityType, string(activityType))

	text := "Nhập giá trị cho " + keyboards.Label(activityType)
	if unit := activityType.Unit(); unit != "" {
		text += " (" + unit + ")"
	}
	return h.send(chatID, text+":")
}

func (h *CallbackHandler) report(ctx context.Context, chatID int64, build func(context.Context) (string, error)) error {
	text, err := build(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to build report", "chat_id", chatID, "error", err)
		return h.send(chatID, reportFailedText)
	}
	return menus.SendReport(h.api, chatID, text)
}

func (h *CallbackHandler) send(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
