package timeline

import (
	"sort"

	"medication-timeline/internal/domain/prescriptions"
)

// DetectConflicts es el modelo simétrico: compara todos los pares de
// prescripciones del mismo medicamento (no sólo las contiguas). Un par está
// en conflicto si sus rangos [inicio, fin natural] se tocan o solapan y la
// atribución de centro difiere, con al menos un lado atribuido.
//
// Es independiente de Consolidate y no altera el timeline.
func DetectConflicts(courses []prescriptions.Prescription) []Conflict {
	type span struct {
		course     prescriptions.Prescription
		start, end int64
	}

	groups := make(map[string][]span)
	var order []string
	for _, c := range courses {
		if !eligible(c) {
			continue
		}
		end, _ := NaturalEndDate(c)
		if _, seen := groups[c.Medication.ID]; !seen {
			order = append(order, c.Medication.ID)
		}
		groups[c.Medication.ID] = append(groups[c.Medication.ID], span{
			course: c,
			start:  c.StartDate.Unix(),
			end:    end.Unix(),
		})
	}

	out := make([]Conflict, 0)
	for _, medID := range order {
		spans := groups[medID]
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				a, b := spans[i], spans[j]
				if a.start > b.end || b.start > a.end {
					continue
				}
				if !facilitiesDiffer(a.course.Facility, b.course.Facility) {
					continue
				}

				startC, endC := a.course, b.course
				if b.start > a.start {
					startC = b.course
				}
				if a.end < b.end {
					endC = a.course
				}
				overlapEnd, _ := NaturalEndDate(endC)

				out = append(out, Conflict{
					MedicationID:        medID,
					Medication:          a.course.Medication.Name,
					PrescriptionID:      a.course.ID,
					OtherPrescriptionID: b.course.ID,
					Facility:            a.course.Facility,
					OtherFacility:       b.course.Facility,
					OverlapStart:        *startC.StartDate,
					OverlapEnd:          overlapEnd,
				})
			}
		}
	}
	return out
}

func facilitiesDiffer(a, b *prescriptions.FacilityRef) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return true
	default:
		return a.ID != b.ID
	}
}
