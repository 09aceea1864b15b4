package facilities

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("facility not found")
	ErrConflict = errors.New("facility external_id already in use")
)

type Repository interface {
	Create(ctx context.Context, f Facility) error
	Update(ctx context.Context, f Facility) error
	GetByID(ctx context.Context, id string) (Facility, error)
	GetByExternalID(ctx context.Context, externalID string) (Facility, error)
	List(ctx context.Context) ([]Facility, error)
	Delete(ctx context.Context, id string) error
}

// Detacher quita la referencia al centro de las prescripciones que lo usan.
type Detacher interface {
	DetachFacility(ctx context.Context, facilityID string) error
}
