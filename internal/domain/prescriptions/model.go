package prescriptions

import "time"

// MedicationRef identifica el medicamento de una prescripción.
// Name se completa al leer (join en Postgres, lookup en memoria).
type MedicationRef struct {
	ID   string
	Name string
}

type FacilityRef struct {
	ID         string
	Name       string
	ExternalID string
}

// Prescription es un curso de medicación de un paciente.
// StartDate nil = curso sin fecha ("undated"), fuera del timeline.
type Prescription struct {
	ID        string
	PatientID string

	Medication MedicationRef
	StartDate  *time.Time
	Facility   *FacilityRef

	Notes       string
	Contributor string

	// Ordenados por Sequence.
	Dosages []DosageSchedule

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Prescription) IsDated() bool {
	return p.StartDate != nil
}

// DosageSchedule es un tramo dosis/frecuencia/vía/duración de una prescripción.
// No tiene ciclo de vida propio: se crea y se borra con su prescripción.
type DosageSchedule struct {
	ID             string
	PrescriptionID string
	Sequence       int

	Dose      string
	Frequency string
	Route     Route
	Duration  time.Duration

	CreatedAt time.Time
}
