package medications

import (
	"errors"
	"net/http"
	"time"

	"medication-timeline/internal/platform/validation"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Patch("/{medicationID}", renameMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})
}

type medicationRequest struct {
	Name string `json:"name" validate:"notblank,max=1000"`
}

// medicationResponse representa un medicamento del catálogo.
type medicationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// createMedicationHandler godoc
// @Summary Crear medicamento
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body medicationRequest true "Nombre del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 409 {string} string "medication already exists"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{Name: req.Name})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos
// @Tags medications
// @Produce json
// @Param q query string false "Texto a buscar en el nombre"
// @Success 200 {array} medicationResponse
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicamento
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// renameMedicationHandler godoc
// @Summary Renombrar medicamento
// @Description Sólo permitido mientras ninguna prescripción lo referencie.
// @Tags medications
// @Accept json
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Param payload body medicationRequest true "Nuevo nombre"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "medication not found"
// @Failure 409 {string} string "medication is referenced by prescriptions"
// @Router /medications/{medicationID} [patch]
func renameMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req medicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		m, err := svc.Rename(r.Context(), chi.URLParam(r, "medicationID"), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// deleteMedicationHandler godoc
// @Summary Eliminar medicamento
// @Tags medications
// @Param medicationID path string true "ID del medicamento"
// @Success 204
// @Failure 404 {string} string "medication not found"
// @Failure 409 {string} string "medication is referenced by prescriptions"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "medicationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
