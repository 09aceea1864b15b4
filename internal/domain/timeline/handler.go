package timeline

import (
	"errors"
	"net/http"

	"medication-timeline/internal/domain/patients"
	"medication-timeline/internal/domain/prescriptions"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Get("/patients/{patientID}/timeline", timelineHandler(svc, patientsSvc))
	r.Get("/patients/{patientID}/undated_medications", undatedHandler(svc, patientsSvc))
	r.Get("/patients/{patientID}/conflicts", conflictsHandler(svc, patientsSvc))
}

// itemResponse es un segmento del timeline. end_date es el fin efectivo;
// natural_end_date el fin sin truncar.
type itemResponse struct {
	ID             string                         `json:"id"`
	MedicationID   string                         `json:"medication_id"`
	Medication     string                         `json:"medication"`
	StartDate      string                         `json:"start_date"`
	EndDate        string                         `json:"end_date"`
	NaturalEndDate string                         `json:"natural_end_date"`
	IsTruncated    bool                           `json:"is_truncated"`
	Dosages        []prescriptions.DosageResponse `json:"dosages"`
}

type conflictResponse struct {
	MedicationID        string                          `json:"medication_id"`
	Medication          string                          `json:"medication"`
	PrescriptionID      string                          `json:"prescription_id"`
	OtherPrescriptionID string                          `json:"other_prescription_id"`
	Facility            *prescriptions.FacilityResponse `json:"facility"`
	OtherFacility       *prescriptions.FacilityResponse `json:"other_facility"`
	OverlapStart        string                          `json:"overlap_start"`
	OverlapEnd          string                          `json:"overlap_end"`
}

// timelineHandler godoc
// @Summary Timeline de medicación del paciente
// @Description Una entrada por prescripción con fecha. Si otra prescripción del mismo medicamento empieza antes del fin natural, end_date se corta en esa fecha e is_truncated=true.
// @Tags timeline
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} itemResponse
// @Failure 404 {string} string "patient not found"
// @Failure 500 {string} string "internal error"
// @Router /patients/{patientID}/timeline [get]
func timelineHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !requirePatient(w, r, patientsSvc, patientID) {
			return
		}

		items, err := svc.Timeline(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]itemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toItemResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// undatedHandler godoc
// @Summary Prescripciones sin fecha
// @Description Prescripciones sin start_date; no participan del timeline.
// @Tags timeline
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} prescriptions.PrescriptionResponse
// @Failure 404 {string} string "patient not found"
// @Failure 500 {string} string "internal error"
// @Router /patients/{patientID}/undated_medications [get]
func undatedHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !requirePatient(w, r, patientsSvc, patientID) {
			return
		}

		items, err := svc.Undated(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]prescriptions.PrescriptionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, prescriptions.ToPrescriptionResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// conflictsHandler godoc
// @Summary Conflictos entre centros
// @Description Pares de prescripciones del mismo medicamento que se solapan y vienen de centros distintos. Sólo lectura.
// @Tags timeline
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} conflictResponse
// @Failure 404 {string} string "patient not found"
// @Failure 500 {string} string "internal error"
// @Router /patients/{patientID}/conflicts [get]
func conflictsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")
		if !requirePatient(w, r, patientsSvc, patientID) {
			return
		}

		items, err := svc.Conflicts(r.Context(), patientID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]conflictResponse, 0, len(items))
		for _, c := range items {
			out = append(out, conflictResponse{
				MedicationID:        c.MedicationID,
				Medication:          c.Medication,
				PrescriptionID:      c.PrescriptionID,
				OtherPrescriptionID: c.OtherPrescriptionID,
				Facility:            toFacilityResponse(c.Facility),
				OtherFacility:       toFacilityResponse(c.OtherFacility),
				OverlapStart:        prescriptions.FormatDate(c.OverlapStart),
				OverlapEnd:          prescriptions.FormatDate(c.OverlapEnd),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// requirePatient responde 404 si el paciente no existe y 500 ante cualquier
// otro error del storage.
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

func toItemResponse(it Item) itemResponse {
	return itemResponse{
		ID:             it.PrescriptionID,
		MedicationID:   it.MedicationID,
		Medication:     it.Medication,
		StartDate:      prescriptions.FormatDate(it.StartDate),
		EndDate:        prescriptions.FormatDate(it.EndDate),
		NaturalEndDate: prescriptions.FormatDate(it.NaturalEndDate),
		IsTruncated:    it.Truncated,
		Dosages:        prescriptions.ToDosageResponses(it.Dosages),
	}
}

func toFacilityResponse(f *prescriptions.FacilityRef) *prescriptions.FacilityResponse {
	if f == nil {
		return nil
	}
	return &prescriptions.FacilityResponse{
		ID:         f.ID,
		Name:       f.Name,
		ExternalID: f.ExternalID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
