package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// Callback data
const (
	LogValue = "log_value"
	Today    = "today"
	Month    = "month"
	Warnings = "warnings"
	Home     = "main_menu"

	// LogPrefix starts the callback data of an activity type button
	LogPrefix = "log:"
)

var labels = map[domain.ActivityType]string{
	domain.HeartRate:        "❤️ Nhịp tim",
	domain.RestingHeartRate: "💤 Nhịp tim nghỉ",
	domain.SpO2:             "🫁 SpO2",
	domain.Stress:           "😣 Căng thẳng",
	domain.Steps:            "👣 Bước chân",
	domain.Calories:         "🔥 Calories",
	domain.Sleep:            "🛌 Giấc ngủ",
}

// Label is the button caption of an activity type
func Label(t domain.ActivityType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Ghi chỉ số", LogValue),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Hôm nay", Today),
			tgbotapi.NewInlineKeyboardButtonData("📊 Tháng này", Month),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Cảnh báo", Warnings),
		),
	)
}

// ActivityTypeMenu lists every activity type, two per row
func ActivityTypeMenu() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range domain.ActivityTypes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(Label(t), LogPrefix+string(t)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Menu chính", Home),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// BackMenu holds a single button leading back to the main menu
func BackMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Menu chính", Home),
		),
	)
}
