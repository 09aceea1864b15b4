// Package seed carga el set de datos de demo. Se puede correr en cada
// arranque: lo que ya existe no se duplica.
package seed

import (
	"context"
	"fmt"
	"time"

	"medication-timeline/internal/domain/facilities"
	"medication-timeline/internal/domain/medications"
	"medication-timeline/internal/domain/patients"
	"medication-timeline/internal/domain/prescriptions"

	"go.uber.org/zap"
)

const demoPatient = "Test Patient"

type Services struct {
	Patients      *patients.Service
	Medications   *medications.Service
	Facilities    *facilities.Service
	Prescriptions *prescriptions.Service
}

type demoCourse struct {
	medication string
	// daysAgo < 0 = sin fecha
	daysAgo    int
	atFacility bool
	notes      string
	dosage     prescriptions.DosageInput
}

var demoCourses = []demoCourse{
	{
		medication: "Aspirin",
		daysAgo:    10,
		atFacility: true,
		notes:      "For pain management",
		dosage:     prescriptions.DosageInput{Dose: "100mg", Frequency: "twice daily", Route: prescriptions.RouteOral, Duration: prescriptions.DaysToDuration(7)},
	},
	{
		medication: "Ibuprofen",
		daysAgo:    5,
		atFacility: true,
		notes:      "Anti-inflammatory",
		dosage:     prescriptions.DosageInput{Dose: "200mg", Frequency: "three times daily", Route: prescriptions.RouteOral, Duration: prescriptions.DaysToDuration(5)},
	},
	{
		medication: "Paracetamol",
		daysAgo:    -1,
		notes:      "As needed for fever",
		dosage:     prescriptions.DosageInput{Dose: "500mg", Frequency: "every 6 hours", Route: prescriptions.RouteOral, Duration: prescriptions.DaysToDuration(1)},
	},
}

// Demo crea el paciente de prueba, tres medicamentos, un centro y las
// prescripciones de ejemplo (dos con fecha relativa a now y una sin fecha).
// Devuelve el ID del paciente.
func Demo(ctx context.Context, svc Services, now time.Time, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	patient, err := ensurePatient(ctx, svc.Patients)
	if err != nil {
		return "", err
	}

	facility, err := svc.Facilities.Ensure(ctx, facilities.CreateInput{Name: "General Hospital", ExternalID: "GH001"})
	if err != nil {
		return "", fmt.Errorf("seed facility: %w", err)
	}

	existing, err := svc.Prescriptions.ListByPatient(ctx, patient.ID)
	if err != nil {
		return "", fmt.Errorf("seed list prescriptions: %w", err)
	}

	created := 0
	for _, c := range demoCourses {
		med, err := svc.Medications.Ensure(ctx, c.medication)
		if err != nil {
			return "", fmt.Errorf("seed medication %s: %w", c.medication, err)
		}
		if hasCourse(existing, med.ID, c.daysAgo >= 0) {
			continue
		}

		in := prescriptions.CreateInput{
			PatientID:    patient.ID,
			MedicationID: med.ID,
			Notes:        c.notes,
			Contributor:  "seed",
			Dosages:      []prescriptions.DosageInput{c.dosage},
		}
		if c.daysAgo >= 0 {
			start := prescriptions.DateOnly(now).AddDate(0, 0, -c.daysAgo)
			in.StartDate = &start
		}
		if c.atFacility {
			in.FacilityID = facility.ID
		}

		if _, err := svc.Prescriptions.Create(ctx, in); err != nil {
			return "", fmt.Errorf("seed prescription %s: %w", c.medication, err)
		}
		created++
	}

	log.Info("demo data seeded",
		zap.String("patient_id", patient.ID),
		zap.Int("prescriptions_created", created),
	)
	return patient.ID, nil
}

func ensurePatient(ctx context.Context, svc *patients.Service) (patients.Patient, error) {
	all, err := svc.List(ctx)
	if err != nil {
		return patients.Patient{}, fmt.Errorf("seed list patients: %w", err)
	}
	for _, p := range all {
		if p.Name == demoPatient {
			return p, nil
		}
	}

	p, err := svc.Create(ctx, patients.CreateInput{Name: demoPatient})
	if err != nil {
		return patients.Patient{}, fmt.Errorf("seed patient: %w", err)
	}
	return p, nil
}

func hasCourse(items []prescriptions.Prescription, medicationID string, dated bool) bool {
	for _, p := range items {
		if p.Medication.ID == medicationID && p.IsDated() == dated {
			return true
		}
	}
	return false
}
