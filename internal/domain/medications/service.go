package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInUse        = errors.New("medication is referenced by prescriptions")
)

type Service struct {
	repo  Repository
	usage UsageCounter
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithUsageCounter habilita la regla de inmutabilidad una vez referenciado.
func (s *Service) WithUsageCounter(u UsageCounter) *Service {
	s.usage = u
	return s
}

type CreateInput struct {
	Name string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medication, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Medication{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return Medication{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return Medication{}, err
	}

	m := Medication{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Ensure devuelve el medicamento con ese nombre, creándolo si no existe.
func (s *Service) Ensure(ctx context.Context, name string) (Medication, error) {
	m, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Medication{}, err
	}
	return s.Create(ctx, CreateInput{Name: name})
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, query string) ([]Medication, error) {
	return s.repo.List(ctx, strings.TrimSpace(query))
}

func (s *Service) Rename(ctx context.Context, id, name string) (Medication, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Medication{}, ErrInvalidInput
	}
	if err := s.ensureUnreferenced(ctx, m.ID); err != nil {
		return Medication{}, err
	}
	if other, err := s.repo.GetByName(ctx, name); err == nil && other.ID != m.ID {
		return Medication{}, ErrConflict
	}

	m.Name = name
	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureUnreferenced(ctx, m.ID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, m.ID)
}

func (s *Service) ensureUnreferenced(ctx context.Context, id string) error {
	if s.usage == nil {
		return nil
	}
	n, err := s.usage.CountByMedication(ctx, id)
	if err != nil {
		return fmt.Errorf("count prescriptions: %w", err)
	}
	if n > 0 {
		return ErrInUse
	}
	return nil
}
