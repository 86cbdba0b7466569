package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/dress"
)

const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
)

// BookingContext is everything rule matching and evaluation know about a rental
type BookingContext struct {
	DressType     string
	CustomerType  string
	Season        string
	Weekday       string
	ServiceType   string
	DurationDays  int
	DurationHours int
}

// NewBookingContext derives a booking context from a request and the priced dress.
// Duration is rounded up to whole days and hours, weekday is the start day.
func NewBookingContext(req calculation.Request, d *dress.Dress) BookingContext {
	b := BookingContext{
		CustomerType: strings.ToLower(strings.TrimSpace(req.CustomerType)),
		Season:       strings.ToLower(strings.TrimSpace(req.Season)),
		Weekday:      strings.ToLower(req.StartDate.Weekday().String()),
	}
	if d != nil {
		b.DressType = d.DressType
		b.ServiceType = d.ServiceTypeID
	}
	if b.Season == "" {
		b.Season = SeasonOf(req.StartDate)
	}

	duration := req.EndDate.Sub(req.StartDate)
	if duration > 0 {
		b.DurationHours = int(math.Ceil(duration.Hours()))
		b.DurationDays = int(math.Ceil(duration.Hours() / 24))
	}
	return b
}

// SeasonOf returns the meteorological season of t
func SeasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}
