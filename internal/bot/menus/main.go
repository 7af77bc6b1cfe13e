package menus

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-tracker/internal/domain"
)

// Sender is the part of the bot API menus need
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	text := `🩺 Sổ theo dõi sức khỏe

Ghi lại chỉ số hằng ngày và xem tổng hợp cùng dữ liệu từ vòng đeo tay.

Chọn thao tác:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendActivityTypeMenu asks which activity type the next value belongs to
func SendActivityTypeMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Chọn loại chỉ số muốn ghi:")
	msg.ReplyMarkup = keyboards.ActivityTypeMenu()
	_, err := api.Send(msg)
	return err
}

// SendReport sends text with a button back to the main menu
func SendReport(api Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.BackMenu()
	_, err := api.Send(msg)
	return err
}

// TodayRow is one activity type's figure for the current day; Item is nil
// when nothing was recorded.
type TodayRow struct {
	ActivityType domain.ActivityType
	Item         *domain.LogItem
}

// FormatToday renders the day summary
func FormatToday(day string, rows []TodayRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Hôm nay (%s)\n\n", day)
	for _, row := range rows {
		if row.Item == nil {
			fmt.Fprintf(&b, "%s: -\n", keyboards.Label(row.ActivityType))
			continue
		}
		fmt.Fprintf(&b, "%s: %s %s\n", keyboards.Label(row.ActivityType), formatValue(row.Item.Value), row.Item.Unit)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMonthlyStats renders per-type record counts
func FormatMonthlyStats(stats *domain.MonthlyStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Thống kê tháng %02d/%d\n\n", stats.Month, stats.Year)
	if len(stats.Stats) == 0 {
		b.WriteString("Chưa có bản ghi nào trong tháng này.")
		return b.String()
	}
	for _, s := range stats.Stats {
		fmt.Fprintf(&b, "%s: %d bản ghi\n", keyboards.Label(s.ActivityType), s.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWarnings lists the days that raised at least one warning
func FormatWarnings(year, month int, days []domain.DayReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Cảnh báo tháng %02d/%d\n\n", month, year)
	flagged := 0
	for _, day := range days {
		if len(day.Warnings) == 0 {
			continue
		}
		flagged++
		parts := make([]string, 0, len(day.Warnings))
		for _, w := range day.Warnings {
			parts = append(parts, describeWarning(w, day))
		}
		fmt.Fprintf(&b, "%s: %s\n", day.Date, strings.Join(parts, "; "))
	}
	if flagged == 0 {
		b.WriteString("✅ Không có cảnh báo nào.")
		return b.String()
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeWarning(code string, day domain.DayReport) string {
	switch code {
	case domain.WarningAbnormalHeartRate:
		return fmt.Sprintf("nhịp tim bất thường (%s–%s bpm)", optional(day.MinHeartRate), optional(day.MaxHeartRate))
	case domain.WarningLowSpO2:
		return fmt.Sprintf("SpO2 thấp (%s%%)", optional(day.MinSpO2))
	case domain.WarningShortSleep:
		return fmt.Sprintf("ngủ ít (%s phút)", optional(day.SleepMinutes))
	default:
		return code
	}
}

func optional(v *float64) string {
	if v == nil {
		return "?"
	}
	return formatValue(*v)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
