package patients

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("patient not found")
)

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Delete(ctx context.Context, id string) error
}

// PrescriptionPurger borra las prescripciones de un paciente.
// En Postgres lo resuelve ON DELETE CASCADE; en memoria hay que hacerlo a mano.
type PrescriptionPurger interface {
	DeleteByPatient(ctx context.Context, patientID string) error
}
