package facilities

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
	repo     Repository
	detacher Detacher
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithDetacher(d Detacher) *Service {
	s.detacher = d
	return s
}

type CreateInput struct {
	Name       string
	ExternalID string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Facility, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Facility{}, ErrInvalidInput
	}
	ext := strings.TrimSpace(in.ExternalID)
	if err := s.ensureExternalIDFree(ctx, ext, ""); err != nil {
		return Facility{}, err
	}

	f := Facility{
		ID:         uuid.NewString(),
		Name:       name,
		ExternalID: ext,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return Facility{}, err
	}
	return f, nil
}

// Ensure busca por external_id (o crea) el centro indicado.
func (s *Service) Ensure(ctx context.Context, in CreateInput) (Facility, error) {
	if ext := strings.TrimSpace(in.ExternalID); ext != "" {
		f, err := s.repo.GetByExternalID(ctx, ext)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Facility{}, err
		}
	}
	return s.Create(ctx, in)
}

func (s *Service) GetByID(ctx context.Context, id string) (Facility, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Facility{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Facility, error) {
	return s.repo.List(ctx)
}

type UpdateInput struct {
	Name       *string
	ExternalID *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Facility, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return Facility{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Facility{}, ErrInvalidInput
		}
		f.Name = name
	}
	if in.ExternalID != nil {
		ext := strings.TrimSpace(*in.ExternalID)
		if err := s.ensureExternalIDFree(ctx, ext, f.ID); err != nil {
			return Facility{}, err
		}
		f.ExternalID = ext
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return Facility{}, err
	}
	return f, nil
}

// Delete borra el centro; las prescripciones quedan sin centro asociado.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.detacher != nil {
		if err := s.detacher.DetachFacility(ctx, f.ID); err != nil {
			return fmt.Errorf("detach facility: %w", err)
		}
	}
	return s.repo.Delete(ctx, f.ID)
}

func (s *Service) ensureExternalIDFree(ctx context.Context, ext, selfID string) error {
	if ext == "" {
		return nil
	}
	other, err := s.repo.GetByExternalID(ctx, ext)
	switch {
	case err == nil && other.ID != selfID:
		return ErrConflict
	case err == nil, errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}
