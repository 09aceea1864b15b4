package timeline

import (
	"math"
	"time"

	"medication-timeline/internal/domain/prescriptions"
)

const day = 24 * time.Hour

// TotalDuration suma las duraciones de los tramos. Una duración negativa
// cuenta como cero y la suma satura en el máximo de time.Duration, así el fin
// natural nunca queda antes del inicio.
func TotalDuration(dosages []prescriptions.DosageSchedule) time.Duration {
	var total time.Duration
	for _, d := range dosages {
		if d.Duration <= 0 {
			continue
		}
		if total > math.MaxInt64-d.Duration {
			return math.MaxInt64
		}
		total += d.Duration
	}
	return total
}

// NaturalEndDate = fecha de inicio + duración total. Sin fecha de inicio no
// hay fin natural. Sólo los días completos mueven la fecha de calendario.
func NaturalEndDate(p prescriptions.Prescription) (time.Time, bool) {
	if p.StartDate == nil {
		return time.Time{}, false
	}
	days := int(TotalDuration(p.Dosages) / day)
	return p.StartDate.AddDate(0, 0, days), true
}
