package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medication-timeline/internal/domain/facilities"
)

type facilityRepo struct {
	mu   sync.RWMutex
	byID map[string]facilities.Facility
}

func NewFacilityRepo() facilities.Repository {
	return &facilityRepo{
		byID: make(map[string]facilities.Facility),
	}
}

func (r *facilityRepo) Create(ctx context.Context, f facilities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("facility id required")
	}
	if _, exists := r.byID[f.ID]; exists {
		return errors.New("facility already exists")
	}
	if r.externalIDTaken(f.ExternalID, f.ID) {
		return facilities.ErrConflict
	}
	r.byID[f.ID] = f
	return nil
}

func (r *facilityRepo) Update(ctx context.Context, f facilities.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[f.ID]; !exists {
		return facilities.ErrNotFound
	}
	if r.externalIDTaken(f.ExternalID, f.ID) {
		return facilities.ErrConflict
	}
	r.byID[f.ID] = f
	return nil
}

func (r *facilityRepo) GetByID(ctx context.Context, id string) (facilities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return facilities.Facility{}, facilities.ErrNotFound
	}
	return f, nil
}

func (r *facilityRepo) GetByExternalID(ctx context.Context, externalID string) (facilities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if externalID == "" {
		return facilities.Facility{}, facilities.ErrNotFound
	}
	for _, f := range r.byID {
		if f.ExternalID == externalID {
			return f, nil
		}
	}
	return facilities.Facility{}, facilities.ErrNotFound
}

func (r *facilityRepo) List(ctx context.Context) ([]facilities.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]facilities.Facility, 0, len(r.byID))
	for _, f := range r.byID {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *facilityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return facilities.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *facilityRepo) externalIDTaken(ext, selfID string) bool {
	if ext == "" {
		return false
	}
	for _, f := range r.byID {
		if f.ID != selfID && f.ExternalID == ext {
			return true
		}
	}
	return false
}
