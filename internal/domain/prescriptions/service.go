package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-timeline/internal/domain/facilities"
	"medication-timeline/internal/domain/medications"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownMedication = errors.New("unknown medication")
	ErrUnknownFacility   = errors.New("unknown facility")
)

type MedicationLookup interface {
	GetByID(ctx context.Context, id string) (medications.Medication, error)
}

type FacilityLookup interface {
	GetByID(ctx context.Context, id string) (facilities.Facility, error)
}

type Service struct {
	repo       Repository
	meds       MedicationLookup
	facilities FacilityLookup
	now        func() time.Time
}

func NewService(repo Repository, meds MedicationLookup, facs FacilityLookup) *Service {
	return &Service{
		repo:       repo,
		meds:       meds,
		facilities: facs,
		now:        time.Now,
	}
}

type DosageInput struct {
	Dose      string
	Frequency string
	Route     Route
	Duration  time.Duration
}

type CreateInput struct {
	PatientID    string
	MedicationID string
	StartDate    *time.Time
	FacilityID   string
	Notes        string
	Contributor  string
	Dosages      []DosageInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Prescription, error) {
	patientID := strings.TrimSpace(in.PatientID)
	if patientID == "" {
		return Prescription{}, ErrInvalidInput
	}

	med, err := s.resolveMedication(ctx, in.MedicationID)
	if err != nil {
		return Prescription{}, err
	}
	fac, err := s.resolveFacility(ctx, in.FacilityID)
	if err != nil {
		return Prescription{}, err
	}

	now := s.now()
	p := Prescription{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		Medication:  med,
		StartDate:   dateOnlyPtr(in.StartDate),
		Facility:    fac,
		Notes:       strings.TrimSpace(in.Notes),
		Contributor: strings.TrimSpace(in.Contributor),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, di := range in.Dosages {
		d, err := s.buildDosage(p.ID, p.Dosages, di, now)
		if err != nil {
			return Prescription{}, err
		}
		p.Dosages = append(p.Dosages, d)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prescription{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Prescription{}, err
	}
	items := []Prescription{p}
	s.hydrate(ctx, items, map[string]string{}, map[string]*FacilityRef{})
	return items[0], nil
}

// ListByPatient devuelve todas las prescripciones del paciente con medicamento,
// centro y dosificaciones cargados, en orden de creación.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	return s.list(ctx, patientID, ListFilter{})
}

// ListUndatedByPatient devuelve, sin modificar, las prescripciones sin fecha de inicio.
func (s *Service) ListUndatedByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	dated := false
	return s.list(ctx, patientID, ListFilter{Dated: &dated})
}

func (s *Service) list(ctx context.Context, patientID string, filter ListFilter) ([]Prescription, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return []Prescription{}, nil
	}
	items, err := s.repo.ListByPatient(ctx, patientID, filter)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, items, map[string]string{}, map[string]*FacilityRef{})
	return items, nil
}

type UpdateInput struct {
	StartDate      *time.Time
	ClearStartDate bool
	// "" = quitar el centro
	FacilityID  *string
	Notes       *string
	Contributor *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Prescription, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Prescription{}, err
	}

	switch {
	case in.ClearStartDate:
		p.StartDate = nil
	case in.StartDate != nil:
		p.StartDate = dateOnlyPtr(in.StartDate)
	}
	if in.FacilityID != nil {
		fac, err := s.resolveFacility(ctx, *in.FacilityID)
		if err != nil {
			return Prescription{}, err
		}
		p.Facility = fac
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.Contributor != nil {
		p.Contributor = strings.TrimSpace(*in.Contributor)
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// AddDosage agrega un tramo al final. Los campos vacíos heredan el último
// valor no vacío de los tramos existentes.
func (s *Service) AddDosage(ctx context.Context, prescriptionID string, in DosageInput) (DosageSchedule, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(prescriptionID))
	if err != nil {
		return DosageSchedule{}, err
	}

	d, err := s.buildDosage(p.ID, p.Dosages, in, s.now())
	if err != nil {
		return DosageSchedule{}, err
	}
	if err := s.repo.AddDosage(ctx, d); err != nil {
		return DosageSchedule{}, err
	}
	return d, nil
}

type DosagePatch struct {
	Dose      *string
	Frequency *string
	Route     *Route
	Duration  *time.Duration
}

func (s *Service) UpdateDosage(ctx context.Context, prescriptionID, dosageID string, in DosagePatch) (DosageSchedule, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(prescriptionID))
	if err != nil {
		return DosageSchedule{}, err
	}

	var d DosageSchedule
	found := false
	for _, cur := range p.Dosages {
		if cur.ID == dosageID {
			d, found = cur, true
			break
		}
	}
	if !found {
		return DosageSchedule{}, ErrDosageNotFound
	}

	if in.Dose != nil {
		d.Dose = strings.TrimSpace(*in.Dose)
	}
	if in.Frequency != nil {
		d.Frequency = strings.TrimSpace(*in.Frequency)
	}
	if in.Route != nil {
		d.Route = *in.Route
	}
	if in.Duration != nil {
		d.Duration = *in.Duration
	}
	if err := validateDosage(d); err != nil {
		return DosageSchedule{}, err
	}

	if err := s.repo.UpdateDosage(ctx, d); err != nil {
		return DosageSchedule{}, err
	}
	return d, nil
}

func (s *Service) DeleteDosage(ctx context.Context, prescriptionID, dosageID string) error {
	return s.repo.DeleteDosage(ctx, strings.TrimSpace(prescriptionID), strings.TrimSpace(dosageID))
}

func (s *Service) buildDosage(prescriptionID string, history []DosageSchedule, in DosageInput, now time.Time) (DosageSchedule, error) {
	d := MergeCarryForward(history, DosageSchedule{
		ID:             uuid.NewString(),
		PrescriptionID: prescriptionID,
		Sequence:       nextSequence(history),
		Dose:           strings.TrimSpace(in.Dose),
		Frequency:      strings.TrimSpace(in.Frequency),
		Route:          in.Route,
		Duration:       in.Duration,
		CreatedAt:      now,
	})
	if err := validateDosage(d); err != nil {
		return DosageSchedule{}, err
	}
	return d, nil
}

func validateDosage(d DosageSchedule) error {
	if strings.TrimSpace(d.Dose) == "" {
		return fmt.Errorf("%w: dose is required", ErrInvalidInput)
	}
	if !d.Route.Valid() {
		return fmt.Errorf("%w: route %q", ErrInvalidInput, d.Route)
	}
	if d.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}
	if d.Duration > DaysToDuration(MaxDurationDays) {
		return fmt.Errorf("%w: duration exceeds %d days", ErrInvalidInput, MaxDurationDays)
	}
	return nil
}

func (s *Service) resolveMedication(ctx context.Context, id string) (MedicationRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MedicationRef{}, fmt.Errorf("%w: medication_id is required", ErrInvalidInput)
	}
	m, err := s.meds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, medications.ErrNotFound) {
			return MedicationRef{}, ErrUnknownMedication
		}
		return MedicationRef{}, err
	}
	return MedicationRef{ID: m.ID, Name: m.Name}, nil
}

func (s *Service) resolveFacility(ctx context.Context, id string) (*FacilityRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, facilities.ErrNotFound) {
			return nil, ErrUnknownFacility
		}
		return nil, err
	}
	return &FacilityRef{ID: f.ID, Name: f.Name, ExternalID: f.ExternalID}, nil
}

// hydrate completa nombres que el repositorio no trae (adapter en memoria).
// Un medicamento o centro que ya no existe deja el nombre vacío: la
// prescripción se devuelve igual.
func (s *Service) hydrate(ctx context.Context, items []Prescription, medNames map[string]string, facs map[string]*FacilityRef) {
	for i := range items {
		p := &items[i]

		if p.Medication.ID != "" && p.Medication.Name == "" {
			name, ok := medNames[p.Medication.ID]
			if !ok {
				if m, err := s.meds.GetByID(ctx, p.Medication.ID); err == nil {
					name = m.Name
				}
				medNames[p.Medication.ID] = name
			}
			p.Medication.Name = name
		}

		if p.Facility != nil && p.Facility.Name == "" {
			ref, ok := facs[p.Facility.ID]
			if !ok {
				ref = &FacilityRef{ID: p.Facility.ID}
				if f, err := s.facilities.GetByID(ctx, p.Facility.ID); err == nil {
					ref = &FacilityRef{ID: f.ID, Name: f.Name, ExternalID: f.ExternalID}
				}
				facs[p.Facility.ID] = ref
			}
			cp := *ref
			p.Facility = &cp
		}

		p.Dosages = SortDosages(p.Dosages)
	}
}

// DateOnly normaliza a fecha de calendario (medianoche UTC).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOnly(*t)
	return &d
}
