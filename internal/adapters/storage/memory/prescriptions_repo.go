package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medication-timeline/internal/domain/prescriptions"
)

type prescriptionRecord struct {
	p   prescriptions.Prescription
	seq int64
}

// prescriptionRepo guarda sólo los IDs de medicamento y centro; los nombres
// los completa el servicio al leer.
type prescriptionRepo struct {
	mu   sync.RWMutex
	byID map[string]prescriptionRecord
	seq  int64
}

func NewPrescriptionRepo() prescriptions.Repository {
	return &prescriptionRepo{
		byID: make(map[string]prescriptionRecord),
	}
}

func (r *prescriptionRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("prescription id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("prescription already exists")
	}

	r.seq++
	r.byID[p.ID] = prescriptionRecord{p: stripRefs(p), seq: r.seq}
	return nil
}

func (r *prescriptionRepo) Update(ctx context.Context, p prescriptions.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[p.ID]
	if !ok {
		return prescriptions.ErrNotFound
	}

	// cabecera solamente; los tramos tienen sus propias operaciones
	dosages := rec.p.Dosages
	rec.p = stripRefs(p)
	rec.p.Dosages = dosages
	r.byID[p.ID] = rec
	return nil
}

func (r *prescriptionRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return prescriptions.Prescription{}, prescriptions.ErrNotFound
	}
	return clonePrescription(rec.p), nil
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID string, filter prescriptions.ListFilter) ([]prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]prescriptionRecord, 0)
	for _, rec := range r.byID {
		if rec.p.PatientID != patientID {
			continue
		}
		if filter.Dated != nil && rec.p.IsDated() != *filter.Dated {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	out := make([]prescriptions.Prescription, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clonePrescription(rec.p))
	}
	return out, nil
}

func (r *prescriptionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return prescriptions.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *prescriptionRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.byID {
		if rec.p.PatientID == patientID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *prescriptionRepo) CountByMedication(ctx context.Context, medicationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, rec := range r.byID {
		if rec.p.Medication.ID == medicationID {
			n++
		}
	}
	return n, nil
}

func (r *prescriptionRepo) DetachFacility(ctx context.Context, facilityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.byID {
		if rec.p.Facility != nil && rec.p.Facility.ID == facilityID {
			rec.p.Facility = nil
			r.byID[id] = rec
		}
	}
	return nil
}

func (r *prescriptionRepo) AddDosage(ctx context.Context, d prescriptions.DosageSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[d.PrescriptionID]
	if !ok {
		return prescriptions.ErrNotFound
	}
	rec.p.Dosages = append(cloneDosages(rec.p.Dosages), d)
	r.byID[d.PrescriptionID] = rec
	return nil
}

func (r *prescriptionRepo) UpdateDosage(ctx context.Context, d prescriptions.DosageSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[d.PrescriptionID]
	if !ok {
		return prescriptions.ErrNotFound
	}
	ds := cloneDosages(rec.p.Dosages)
	for i := range ds {
		if ds[i].ID == d.ID {
			ds[i] = d
			rec.p.Dosages = ds
			r.byID[d.PrescriptionID] = rec
			return nil
		}
	}
	return prescriptions.ErrDosageNotFound
}

func (r *prescriptionRepo) DeleteDosage(ctx context.Context, prescriptionID, dosageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[prescriptionID]
	if !ok {
		return prescriptions.ErrNotFound
	}
	ds := make([]prescriptions.DosageSchedule, 0, len(rec.p.Dosages))
	found := false
	for _, d := range rec.p.Dosages {
		if d.ID == dosageID {
			found = true
			continue
		}
		ds = append(ds, d)
	}
	if !found {
		return prescriptions.ErrDosageNotFound
	}
	rec.p.Dosages = ds
	r.byID[prescriptionID] = rec
	return nil
}

func stripRefs(p prescriptions.Prescription) prescriptions.Prescription {
	p.Medication = prescriptions.MedicationRef{ID: p.Medication.ID}
	if p.Facility != nil {
		p.Facility = &prescriptions.FacilityRef{ID: p.Facility.ID}
	}
	if p.StartDate != nil {
		d := *p.StartDate
		p.StartDate = &d
	}
	p.Dosages = cloneDosages(p.Dosages)
	return p
}

// clonePrescription evita que el llamador modifique el estado interno.
func clonePrescription(p prescriptions.Prescription) prescriptions.Prescription {
	if p.Facility != nil {
		f := *p.Facility
		p.Facility = &f
	}
	if p.StartDate != nil {
		d := *p.StartDate
		p.StartDate = &d
	}
	p.Dosages = cloneDosages(p.Dosages)
	return p
}

func cloneDosages(ds []prescriptions.DosageSchedule) []prescriptions.DosageSchedule {
	out := make([]prescriptions.DosageSchedule, len(ds))
	copy(out, ds)
	return out
}
