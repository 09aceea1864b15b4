package timeline

import (
	"sort"
	"strings"
	"time"

	"medication-timeline/internal/domain/prescriptions"
)

// Consolidate produce un Item por prescripción con fecha de inicio y
// medicamento, en el orden del input. Dentro de cada medicamento, si la
// siguiente prescripción (por fecha de inicio) empieza estrictamente antes
// del fin natural de la actual, la actual se corta en esa fecha.
//
// Es una transformación pura: no modifica courses y dos llamadas con el
// mismo input devuelven lo mismo.
func Consolidate(courses []prescriptions.Prescription) []Item {
	items := make([]Item, 0, len(courses))
	cutoffs := cutoffsByIndex(courses)

	for i, c := range courses {
		if !eligible(c) {
			continue
		}

		natural, _ := NaturalEndDate(c)
		end := natural
		if cut, ok := cutoffs[i]; ok {
			end = cut
		}

		items = append(items, Item{
			PrescriptionID: c.ID,
			MedicationID:   c.Medication.ID,
			Medication:     c.Medication.Name,
			StartDate:      *c.StartDate,
			EndDate:        end,
			NaturalEndDate: natural,
			Truncated:      end.Before(natural),
			Dosages:        prescriptions.SortDosages(c.Dosages),
		})
	}
	return items
}

// cutoffsByIndex devuelve, por posición en courses, la fecha de corte de las
// prescripciones truncadas. Se indexa por posición y no por ID para tolerar
// IDs duplicados en el input.
func cutoffsByIndex(courses []prescriptions.Prescription) map[int]time.Time {
	groups := make(map[string][]int)
	for i, c := range courses {
		if !eligible(c) {
			continue
		}
		groups[c.Medication.ID] = append(groups[c.Medication.ID], i)
	}

	out := make(map[int]time.Time)
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}

		// Empates por fecha: se respeta el orden del input.
		sort.SliceStable(idx, func(a, b int) bool {
			return courses[idx[a]].StartDate.Before(*courses[idx[b]].StartDate)
		})

		for k := 0; k+1 < len(idx); k++ {
			cur := courses[idx[k]]
			natural, ok := NaturalEndDate(cur)
			if !ok {
				continue
			}

			next := *courses[idx[k+1]].StartDate
			if !next.Before(natural) {
				continue
			}

			// Nunca antes del propio inicio: queda como marca de largo cero.
			if next.Before(*cur.StartDate) {
				next = *cur.StartDate
			}
			out[idx[k]] = next
		}
	}
	return out
}

// eligible: con fecha y con medicamento. Lo demás se omite sin fallar.
func eligible(c prescriptions.Prescription) bool {
	return c.StartDate != nil && strings.TrimSpace(c.Medication.ID) != ""
}

// SortForDisplay ordena por fecha de inicio, luego nombre de medicamento;
// los empates mantienen el orden previo.
func SortForDisplay(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartDate.Equal(items[j].StartDate) {
			return items[i].StartDate.Before(items[j].StartDate)
		}
		return items[i].Medication < items[j].Medication
	})
}
