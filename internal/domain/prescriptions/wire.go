package prescriptions

import (
	"fmt"
	"math"
	"time"
)

// DateLayout es el formato de fechas en la API (fecha de calendario, sin hora).
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// MaxDurationDays es el largo máximo aceptado para un tramo (100 años).
const MaxDurationDays = 36500

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// DaysToDuration satura en los extremos de time.Duration en vez de desbordar.
func DaysToDuration(n int) time.Duration {
	limit := int64(math.MaxInt64 / int64(day))
	switch {
	case int64(n) > limit:
		return math.MaxInt64
	case int64(n) < -limit:
		return math.MinInt64
	}
	return time.Duration(n) * day
}

// DurationDays devuelve los días completos; negativos cuentan como cero.
func DurationDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / day)
}

// FormatDuration: "1 day", "10 days", "2 days 6h0m0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := DurationDays(d)
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	out := fmt.Sprintf("%d %s", days, unit)
	if rest := d - DaysToDuration(days); rest > 0 {
		out += " " + rest.String()
	}
	return out
}
