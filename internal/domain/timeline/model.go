package timeline

import (
	"time"

	"medication-timeline/internal/domain/prescriptions"
)

// Item es un segmento del timeline: una prescripción con fecha, con su fin
// efectivo (posiblemente truncado) y su fin natural.
type Item struct {
	PrescriptionID string
	MedicationID   string
	Medication     string

	StartDate      time.Time
	EndDate        time.Time // efectivo
	NaturalEndDate time.Time
	Truncated      bool

	Dosages []prescriptions.DosageSchedule
}

// Conflict es un par de prescripciones del mismo medicamento que se solapan
// en fechas y vienen de centros distintos.
type Conflict struct {
	MedicationID string
	Medication   string

	PrescriptionID      string
	OtherPrescriptionID string

	Facility      *prescriptions.FacilityRef
	OtherFacility *prescriptions.FacilityRef

	OverlapStart time.Time
	OverlapEnd   time.Time
}
