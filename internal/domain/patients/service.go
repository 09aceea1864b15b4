package patients

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
)

type Service struct {
	repo   Repository
	purger PrescriptionPurger
	now    func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithPurger registra quién limpia las prescripciones al borrar un paciente.
func (s *Service) WithPurger(p PrescriptionPurger) *Service {
	s.purger = p
	return s
}

type CreateInput struct {
	Name string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Patient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Patient{}, ErrInvalidInput
	}

	now := s.now()
	p := Patient{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	Name *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Patient, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Name = name
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

// Delete elimina al paciente junto con sus prescripciones.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if s.purger != nil {
		if err := s.purger.DeleteByPatient(ctx, p.ID); err != nil {
			return fmt.Errorf("purge prescriptions: %w", err)
		}
	}
	return s.repo.Delete(ctx, p.ID)
}
