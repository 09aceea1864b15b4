package prescriptions

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("prescription not found")
	ErrDosageNotFound = errors.New("dosage schedule not found")
)

type Repository interface {
	// Create persiste la prescripción con sus dosificaciones iniciales.
	Create(ctx context.Context, p Prescription) error
	// Update sólo toca la cabecera (fecha, centro, notas, contributor).
	Update(ctx context.Context, p Prescription) error
	GetByID(ctx context.Context, id string) (Prescription, error)
	// ListByPatient devuelve en orden de creación, con dosificaciones.
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Prescription, error)
	Delete(ctx context.Context, id string) error
	DeleteByPatient(ctx context.Context, patientID string) error

	CountByMedication(ctx context.Context, medicationID string) (int, error)
	DetachFacility(ctx context.Context, facilityID string) error

	AddDosage(ctx context.Context, d DosageSchedule) error
	UpdateDosage(ctx context.Context, d DosageSchedule) error
	DeleteDosage(ctx context.Context, prescriptionID, dosageID string) error
}

// ListFilter.Dated: nil = todas, true = sólo con fecha, false = sólo sin fecha.
type ListFilter struct {
	Dated *bool
}
