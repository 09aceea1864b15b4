package medications

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("medication not found")
	ErrConflict = errors.New("medication already exists")
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	// GetByName compara sin distinguir mayúsculas.
	GetByName(ctx context.Context, name string) (Medication, error)
	List(ctx context.Context, query string) ([]Medication, error)
	Delete(ctx context.Context, id string) error
}

// UsageCounter cuenta prescripciones que referencian un medicamento.
type UsageCounter interface {
	CountByMedication(ctx context.Context, medicationID string) (int, error)
}
