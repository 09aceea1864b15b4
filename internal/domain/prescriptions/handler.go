package prescriptions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-timeline/internal/domain/patients"
	"medication-timeline/internal/middleware"
	"medication-timeline/internal/platform/validation"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc, patientsSvc))
		pr.Get("/{prescriptionID}", getPrescriptionHandler(svc))
		pr.Patch("/{prescriptionID}", updatePrescriptionHandler(svc))
		pr.Delete("/{prescriptionID}", deletePrescriptionHandler(svc))

		// Tramos de dosificación (viven y mueren con la prescripción)
		pr.Post("/{prescriptionID}/dosages", addDosageHandler(svc))
		pr.Patch("/{prescriptionID}/dosages/{dosageID}", updateDosageHandler(svc))
		pr.Delete("/{prescriptionID}/dosages/{dosageID}", deleteDosageHandler(svc))
	})

	r.Get("/patients/{patientID}/prescriptions", listPatientPrescriptionsHandler(svc, patientsSvc))
}

type dosageRequest struct {
	Dose         string `json:"dose" validate:"max=100"`
	Frequency    string `json:"frequency" validate:"max=100"`
	Route        Route  `json:"route" validate:"omitempty,oneof=oral intravenous intramuscular subcutaneous topical inhalation rectal other" enums:"oral,intravenous,intramuscular,subcutaneous,topical,inhalation,rectal,other"`
	DurationDays *int   `json:"duration_days" validate:"required,gte=0,lte=36500"`
}

// createPrescriptionRequest es el cuerpo para registrar un curso de medicación.
// Si contributor viene vacío se usa el usuario autenticado.
type createPrescriptionRequest struct {
	PatientID    string          `json:"patient_id" validate:"notblank"`
	MedicationID string          `json:"medication_id" validate:"notblank"`
	StartDate    string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"` // vacío = sin fecha
	FacilityID   string          `json:"facility_id"`
	Notes        string          `json:"notes"`
	Contributor  string          `json:"contributor" validate:"max=200"`
	Dosages      []dosageRequest `json:"dosages" validate:"dive"`
}

type updatePrescriptionRequest struct {
	StartDate      *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ClearStartDate bool    `json:"clear_start_date"`
	FacilityID     *string `json:"facility_id"` // "" = quitar centro
	Notes          *string `json:"notes"`
	Contributor    *string `json:"contributor" validate:"omitempty,max=200"`
}

type dosagePatchRequest struct {
	Dose         *string `json:"dose" validate:"omitempty,notblank,max=100"`
	Frequency    *string `json:"frequency" validate:"omitempty,max=100"`
	Route        *Route  `json:"route" validate:"omitempty,oneof=oral intravenous intramuscular subcutaneous topical inhalation rectal other"`
	DurationDays *int    `json:"duration_days" validate:"omitempty,gte=0,lte=36500"`
}

type MedicationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FacilityResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ExternalID string `json:"external_id"`
}

// DosageResponse es un tramo tal como se muestra; duration es legible y
// duration_days es el conteo de días completos.
type DosageResponse struct {
	ID           string `json:"id"`
	Sequence     int    `json:"sequence"`
	Dose         string `json:"dose"`
	Frequency    string `json:"frequency"`
	Route        Route  `json:"route"`
	DurationDays int    `json:"duration_days"`
	Duration     string `json:"duration"`
}

// PrescriptionResponse representa una prescripción con sus tramos.
type PrescriptionResponse struct {
	ID            string             `json:"id"`
	PatientID     string             `json:"patient_id"`
	Medication    MedicationResponse `json:"medication"`
	StartDate     *string            `json:"start_date"`
	Facility      *FacilityResponse  `json:"source_facility"`
	Notes         string             `json:"notes"`
	Contributor   string             `json:"contributor"`
	CurrentDosage *DosageResponse    `json:"current_dosage"`
	Dosages       []DosageResponse   `json:"dosage_schedules"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// createPrescriptionHandler godoc
// @Summary Crear prescripción
// @Description Crea un curso de medicación con sus tramos iniciales. Los campos vacíos de un tramo heredan el último valor no vacío de los tramos anteriores.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario (contributor)"
// @Param payload body createPrescriptionRequest true "Datos de la prescripción; start_date en formato YYYY-MM-DD"
// @Success 201 {object} PrescriptionResponse
// @Failure 400 {string} string "invalid json / validación / unknown medication"
// @Failure 404 {string} string "patient not found"
// @Router /prescriptions [post]
func createPrescriptionHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		if !requirePatient(w, r, patientsSvc, req.PatientID) {
			return
		}

		var start *time.Time
		if strings.TrimSpace(req.StartDate) != "" {
			t, err := ParseDate(req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			start = &t
		}

		contributor := req.Contributor
		if strings.TrimSpace(contributor) == "" {
			contributor = middleware.ContributorFrom(r.Context())
		}

		dosages := make([]DosageInput, 0, len(req.Dosages))
		for _, d := range req.Dosages {
			dosages = append(dosages, toDosageInput(d))
		}

		p, err := svc.Create(r.Context(), CreateInput{
			PatientID:    req.PatientID,
			MedicationID: req.MedicationID,
			StartDate:    start,
			FacilityID:   req.FacilityID,
			Notes:        req.Notes,
			Contributor:  contributor,
			Dosages:      dosages,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToPrescriptionResponse(p))
	}
}

// listPatientPrescriptionsHandler godoc
// @Summary Listar prescripciones de un paciente
// @Tags prescriptions
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} PrescriptionResponse
// @Failure 404 {string} string "patient not found"
// @Failure 500 {string} string "internal error"
// @Router /patients/{patientID}/prescriptions [get]
func listPatientPrescriptionsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !requirePatient(w, r, patientsSvc, patientID) {
			return
		}

		items, err := svc.ListByPatient(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]PrescriptionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToPrescriptionResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPrescriptionHandler godoc
// @Summary Obtener prescripción
// @Tags prescriptions
// @Produce json
// @Param prescriptionID path string true "ID de la prescripción"
// @Success 200 {object} PrescriptionResponse
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID} [get]
func getPrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "prescriptionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToPrescriptionResponse(p))
	}
}

// updatePrescriptionHandler godoc
// @Summary Actualizar prescripción
// @Description Modifica fecha de inicio, centro, notas o contributor. clear_start_date=true deja la prescripción sin fecha.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param prescriptionID path string true "ID de la prescripción"
// @Param payload body updatePrescriptionRequest true "Campos a modificar"
// @Success 200 {object} PrescriptionResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID} [patch]
func updatePrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			ClearStartDate: req.ClearStartDate,
			FacilityID:     req.FacilityID,
			Notes:          req.Notes,
			Contributor:    req.Contributor,
		}
		if req.StartDate != nil && !req.ClearStartDate {
			t, err := ParseDate(*req.StartDate)
			if err != nil {
				http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.StartDate = &t
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "prescriptionID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToPrescriptionResponse(p))
	}
}

// deletePrescriptionHandler godoc
// @Summary Eliminar prescripción
// @Description Elimina la prescripción y sus tramos.
// @Tags prescriptions
// @Param prescriptionID path string true "ID de la prescripción"
// @Success 204
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID} [delete]
func deletePrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "prescriptionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// addDosageHandler godoc
// @Summary Agregar tramo de dosificación
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param prescriptionID path string true "ID de la prescripción"
// @Param payload body dosageRequest true "Tramo; duration_days obligatorio"
// @Success 201 {object} DosageResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID}/dosages [post]
func addDosageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dosageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		d, err := svc.AddDosage(r.Context(), chi.URLParam(r, "prescriptionID"), toDosageInput(req))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ToDosageResponse(d))
	}
}

// updateDosageHandler godoc
// @Summary Modificar tramo de dosificación
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param prescriptionID path string true "ID de la prescripción"
// @Param dosageID path string true "ID del tramo"
// @Param payload body dosagePatchRequest true "Campos a modificar"
// @Success 200 {object} DosageResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "prescription / dosage schedule not found"
// @Router /prescriptions/{prescriptionID}/dosages/{dosageID} [patch]
func updateDosageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dosagePatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		patch := DosagePatch{
			Dose:      req.Dose,
			Frequency: req.Frequency,
			Route:     req.Route,
		}
		if req.DurationDays != nil {
			d := DaysToDuration(*req.DurationDays)
			patch.Duration = &d
		}

		d, err := svc.UpdateDosage(r.Context(), chi.URLParam(r, "prescriptionID"), chi.URLParam(r, "dosageID"), patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToDosageResponse(d))
	}
}

// deleteDosageHandler godoc
// @Summary Eliminar tramo de dosificación
// @Tags prescriptions
// @Param prescriptionID path string true "ID de la prescripción"
// @Param dosageID path string true "ID del tramo"
// @Success 204
// @Failure 404 {string} string "dosage schedule not found"
// @Router /prescriptions/{prescriptionID}/dosages/{dosageID} [delete]
func deleteDosageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.DeleteDosage(r.Context(), chi.URLParam(r, "prescriptionID"), chi.URLParam(r, "dosageID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toDosageInput(d dosageRequest) DosageInput {
	in := DosageInput{
		Dose:      d.Dose,
		Frequency: d.Frequency,
		Route:     d.Route,
	}
	if d.DurationDays != nil {
		in.Duration = DaysToDuration(*d.DurationDays)
	}
	return in
}

func ToDosageResponse(d DosageSchedule) DosageResponse {
	return DosageResponse{
		ID:           d.ID,
		Sequence:     d.Sequence,
		Dose:         d.Dose,
		Frequency:    d.Frequency,
		Route:        d.Route,
		DurationDays: DurationDays(d.Duration),
		Duration:     FormatDuration(d.Duration),
	}
}

func ToDosageResponses(ds []DosageSchedule) []DosageResponse {
	out := make([]DosageResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, ToDosageResponse(d))
	}
	return out
}

func ToPrescriptionResponse(p Prescription) PrescriptionResponse {
	out := PrescriptionResponse{
		ID:        p.ID,
		PatientID: p.PatientID,
		Medication: MedicationResponse{
			ID:   p.Medication.ID,
			Name: p.Medication.Name,
		},
		StartDate:   FormatDatePtr(p.StartDate),
		Notes:       p.Notes,
		Contributor: p.Contributor,
		Dosages:     ToDosageResponses(p.Dosages),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Facility != nil {
		out.Facility = &FacilityResponse{
			ID:         p.Facility.ID,
			Name:       p.Facility.Name,
			ExternalID: p.Facility.ExternalID,
		}
	}
	if cur, ok := CurrentDosage(p.Dosages); ok {
		resp := ToDosageResponse(cur)
		out.CurrentDosage = &resp
	}
	return out
}

func requirePatient(w http.ResponseWriter, r *http.Request, svc *patients.Service, patientID string) bool {
	_, err := svc.GetByID(r.Context(), patientID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, patients.ErrNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return false
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnknownMedication),
		errors.Is(err, ErrUnknownFacility):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDosageNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
