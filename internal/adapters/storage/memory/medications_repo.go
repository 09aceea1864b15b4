package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medication-timeline/internal/domain/medications"
)

type medicationRepo struct {
	mu   sync.RWMutex
	byID map[string]medications.Medication
}

func NewMedicationRepo() medications.Repository {
	return &medicationRepo{
		byID: make(map[string]medications.Medication),
	}
}

func (r *medicationRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}
	if r.nameTaken(m.Name, m.ID) {
		return medications.ErrConflict
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) Update(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return medications.ErrNotFound
	}
	if r.nameTaken(m.Name, m.ID) {
		return medications.ErrConflict
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return m, nil
}

func (r *medicationRepo) GetByName(ctx context.Context, name string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.byID {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return medications.Medication{}, medications.ErrNotFound
}

func (r *medicationRepo) List(ctx context.Context, query string) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]medications.Medication, 0)
	for _, m := range r.byID {
		if q != "" && !strings.Contains(strings.ToLower(m.Name), q) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *medicationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return medications.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// nameTaken asume el lock tomado.
func (r *medicationRepo) nameTaken(name, selfID string) bool {
	for _, m := range r.byID {
		if m.ID != selfID && strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}
