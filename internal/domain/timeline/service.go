package timeline

import (
	"context"
	"fmt"
	"time"

	"medication-timeline/internal/domain/prescriptions"

	"go.uber.org/zap"
)

// Source entrega las prescripciones de un paciente ya cargadas
// (medicamento, centro y tramos).
type Source interface {
	ListByPatient(ctx context.Context, patientID string) ([]prescriptions.Prescription, error)
	ListUndatedByPatient(ctx context.Context, patientID string) ([]prescriptions.Prescription, error)
}

// Recorder recibe métricas de cada consolidación.
type Recorder interface {
	ObserveConsolidation(courses, items, truncated int, elapsed time.Duration)
}

type Service struct {
	src Source
	rec Recorder
	log *zap.Logger
	now func() time.Time
}

func NewService(src Source, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		src: src,
		log: log,
		now: time.Now,
	}
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.rec = r
	return s
}

// Timeline consolida las prescripciones con fecha del paciente y las
// devuelve en orden de presentación.
func (s *Service) Timeline(ctx context.Context, patientID string) ([]Item, error) {
	courses, err := s.src.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}

	started := s.now()
	items := Consolidate(courses)
	SortForDisplay(items)
	elapsed := s.now().Sub(started)

	truncated := 0
	for _, it := range items {
		if it.Truncated {
			truncated++
		}
	}

	for _, c := range courses {
		if c.StartDate != nil && !eligible(c) {
			s.log.Warn("prescription without medication skipped from timeline",
				zap.String("patient_id", patientID),
				zap.String("prescription_id", c.ID),
			)
		}
	}

	if s.rec != nil {
		s.rec.ObserveConsolidation(len(courses), len(items), truncated, elapsed)
	}
	s.log.Debug("timeline consolidated",
		zap.String("patient_id", patientID),
		zap.Int("courses", len(courses)),
		zap.Int("items", len(items)),
		zap.Int("truncated", truncated),
	)

	return items, nil
}

// Undated devuelve sin modificar las prescripciones sin fecha de inicio.
func (s *Service) Undated(ctx context.Context, patientID string) ([]prescriptions.Prescription, error) {
	items, err := s.src.ListUndatedByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list undated prescriptions: %w", err)
	}
	return items, nil
}

// Conflicts corre el detector simétrico sobre las mismas prescripciones.
func (s *Service) Conflicts(ctx context.Context, patientID string) ([]Conflict, error) {
	courses, err := s.src.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return DetectConflicts(courses), nil
}
