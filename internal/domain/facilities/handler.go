package facilities

import (
	"errors"
	"net/http"
	"time"

	"medication-timeline/internal/platform/validation"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/facilities", func(fr chi.Router) {
		fr.Post("/", createFacilityHandler(svc))
		fr.Get("/", listFacilitiesHandler(svc))
		fr.Get("/{facilityID}", getFacilityHandler(svc))
		fr.Patch("/{facilityID}", updateFacilityHandler(svc))
		fr.Delete("/{facilityID}", deleteFacilityHandler(svc))
	})
}

type createFacilityRequest struct {
	Name       string `json:"name" validate:"notblank,max=200"`
	ExternalID string `json:"external_id" validate:"max=100"`
}

type updateFacilityRequest struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=200"`
	ExternalID *string `json:"external_id" validate:"omitempty,max=100"`
}

// facilityResponse representa un centro de origen.
type facilityResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// createFacilityHandler godoc
// @Summary Crear centro
// @Tags facilities
// @Accept json
// @Produce json
// @Param payload body createFacilityRequest true "Datos del centro"
// @Success 201 {object} facilityResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 409 {string} string "facility external_id already in use"
// @Router /facilities [post]
func createFacilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFacilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		f, err := svc.Create(r.Context(), CreateInput{Name: req.Name, ExternalID: req.ExternalID})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFacilityResponse(f))
	}
}

// listFacilitiesHandler godoc
// @Summary Listar centros
// @Tags facilities
// @Produce json
// @Success 200 {array} facilityResponse
// @Router /facilities [get]
func listFacilitiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]facilityResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFacilityResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getFacilityHandler godoc
// @Summary Obtener centro
// @Tags facilities
// @Produce json
// @Param facilityID path string true "ID del centro"
// @Success 200 {object} facilityResponse
// @Failure 404 {string} string "facility not found"
// @Router /facilities/{facilityID} [get]
func getFacilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := svc.GetByID(r.Context(), chi.URLParam(r, "facilityID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFacilityResponse(f))
	}
}

// updateFacilityHandler godoc
// @Summary Actualizar centro
// @Tags facilities
// @Accept json
// @Produce json
// @Param facilityID path string true "ID del centro"
// @Param payload body updateFacilityRequest true "Campos a modificar"
// @Success 200 {object} facilityResponse
// @Failure 404 {string} string "facility not found"
// @Failure 409 {string} string "facility external_id already in use"
// @Router /facilities/{facilityID} [patch]
func updateFacilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateFacilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		f, err := svc.Update(r.Context(), chi.URLParam(r, "facilityID"), UpdateInput{
			Name:       req.Name,
			ExternalID: req.ExternalID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFacilityResponse(f))
	}
}

// deleteFacilityHandler godoc
// @Summary Eliminar centro
// @Description Las prescripciones que lo referencian quedan sin centro.
// @Tags facilities
// @Param facilityID path string true "ID del centro"
// @Success 204
// @Failure 404 {string} string "facility not found"
// @Router /facilities/{facilityID} [delete]
func deleteFacilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "facilityID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toFacilityResponse(f Facility) facilityResponse {
	return facilityResponse{
		ID:         f.ID,
		Name:       f.Name,
		ExternalID: f.ExternalID,
		CreatedAt:  f.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict):
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
