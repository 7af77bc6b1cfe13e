package handlers

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-tracker/internal/interfaces"
)

// BotAPI is the subset of *tgbotapi.BotAPI the handlers call
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Logs      interfaces.HealthLogServiceInterface
	Aggregate interfaces.AggregateServiceInterface
	Stats     interfaces.StatsServiceInterface
	Warnings  interfaces.WarningServiceInterface
	// Location is the zone "today" and "this month" are read in
	Location *time.Location
	Now      func() time.Time
}

func (d Dependencies) now() time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	if d.Now == nil {
		return time.Now().In(loc)
	}
	return d.Now().In(loc)
}
