package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/health-tracker/internal/bot/state"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

// botNote marks logs entered through the chat
const botNote = "Telegram"

// TextHandler handles free text messages
type TextHandler struct {
	api          BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	switch h.stateManager.GetUserState(message.From.ID) {
	case state.WaitingForValue:
		return h.handleValue(ctx, message)
	default:
		return menus.SendMainMenu(h.api, message.Chat.ID)
	}
}

// handleValue stores the number as a log of the chosen activity type,
// timestamped now
func (h *TextHandler) handleValue(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID

	raw, _ := h.stateManager.GetTempData(userID, state.KeyActivityType)
	name, _ := raw.(string)
	activityType := domain.ActivityType(name)
	if !activityType.Valid() {
		h.stateManager.ClearUserState(userID)
		h.stateManager.ClearTempData(userID)
		return menus.SendActivityTypeMenu(h.api, chatID)
	}

	value, err := ParseValue(message.Text)
	if err != nil {
		return h.send(chatID, "❌ Giá trị không hợp lệ. Hãy gửi một số, ví dụ: 72 hoặc 97,5")
	}

	log := &domain.HealthLog{
		ActivityType: activityType,
		Value:        value,
		Unit:         activityType.Unit(),
		Note:         botNote,
		OccurredAt:   h.deps.now(),
	}
	if err := h.deps.Logs.Create(ctx, log); err != nil {
		logger.WithContext(ctx).Error("Failed to store log from chat", "user_id", userID, "activity_type", activityType, "error", err)
		return h.send(chatID, "❌ Không lưu được chỉ số, vui lòng thử lại.")
	}

	h.stateManager.ClearUserState(userID)
	h.stateManager.ClearTempData(userID)

	text := fmt.Sprintf("✅ Đã lưu %s: %s %s", keyboards.Label(activityType), strings.TrimSpace(message.Text), log.Unit)
	return menus.SendReport(h.api, chatID, strings.TrimSpace(text))
}

// ParseValue reads a non-negative number; a decimal comma is accepted
func ParseValue(text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("value out of range: %s", text)
	}
	return v, nil
}

func (h *TextHandler) send(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
