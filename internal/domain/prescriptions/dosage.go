package prescriptions

import (
	"sort"
	"strings"
)

// SortDosages ordena por Sequence (y por alta como desempate) sin tocar el input.
func SortDosages(ds []DosageSchedule) []DosageSchedule {
	out := make([]DosageSchedule, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// CurrentDosage deriva la dosis/frecuencia/vía vigente a partir del último
// tramo. Se calcula al leer; nunca se guarda en la prescripción.
func CurrentDosage(ds []DosageSchedule) (DosageSchedule, bool) {
	if len(ds) == 0 {
		return DosageSchedule{}, false
	}
	ordered := SortDosages(ds)
	return ordered[len(ordered)-1], true
}

// MergeCarryForward completa los campos vacíos de next (dosis, frecuencia,
// vía) con el valor no vacío más reciente de cada campo en history.
// Se aplica una sola vez, al crear el tramo.
func MergeCarryForward(history []DosageSchedule, next DosageSchedule) DosageSchedule {
	ordered := SortDosages(history)

	for i := len(ordered) - 1; i >= 0; i-- {
		prev := ordered[i]
		if strings.TrimSpace(next.Dose) == "" && strings.TrimSpace(prev.Dose) != "" {
			next.Dose = prev.Dose
		}
		if strings.TrimSpace(next.Frequency) == "" && strings.TrimSpace(prev.Frequency) != "" {
			next.Frequency = prev.Frequency
		}
		if next.Route == "" && prev.Route != "" {
			next.Route = prev.Route
		}
	}
	return next
}

func nextSequence(ds []DosageSchedule) int {
	max := 0
	for _, d := range ds {
		if d.Sequence > max {
			max = d.Sequence
		}
	}
	return max + 1
}
