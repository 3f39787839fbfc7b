package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-registry/internal/domain/ownership"
	"pet-registry/internal/middleware"
	"pet-registry/internal/platform/logger"
	"pet-registry/internal/ports/files"
)

// maxPhotoBytes limita el body de subida de foto.
const maxPhotoBytes = 5 << 20

func RegisterRoutes(r chi.Router, svc *Service, ownSvc *ownership.Service, uploader files.Uploader, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, ownSvc))
		pr.Get("/", listPetsHandler(svc, ownSvc))

		pr.Get("/{petID}", getPetHandler(svc, ownSvc))
		pr.Patch("/{petID}", updatePetHandler(svc, ownSvc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, ownSvc, log))

		pr.Post("/{petID}/photo", uploadPhotoHandler(svc, ownSvc, uploader, log))
	})
}

type createPetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type petResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        PetType   `json:"type"`
	PhotoKey    string    `json:"photo_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Crea una mascota para el usuario autenticado. El dueño sale de los claims, nunca del body.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "name y description requeridos; type uno de cat, dog, bird, rabbit, other"
// @Success 201 {object} petResponse
// @Failure 400 {object} validationResponse "errores por campo"
// @Failure 401 {string} string "unauthorized"
// @Router /pets [post]
func createPetHandler(svc *Service, ownSvc *ownership.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		// Post-cutover el join es la fuente de verdad: registrar al creador
		// como primary. Pre-cutover es no-op (la FK ya lo tiene).
		if err := ownSvc.RecordInitialOwner(r.Context(), p.ID, claims.UserID); err != nil {
			// Compensación: sin fila de owner la mascota quedaría huérfana
			// (nadie pasa CanModify, ni el creador). Mejor deshacer el alta.
			_ = svc.Delete(r.Context(), p.ID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler devuelve las mascotas del usuario autenticado.
// Post-cutover la lista sale del join (co-dueños incluidos).
func listPetsHandler(svc *Service, ownSvc *ownership.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		multi, err := ownSvc.MultiOwner(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var items []Pet
		if multi {
			rels, err := ownSvc.ListByUser(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			ids := make([]string, 0, len(rels))
			for _, rel := range rels {
				ids = append(ids, rel.PetID)
			}
			items, err = svc.ListByIDs(r.Context(), ids)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		} else {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service, ownSvc *ownership.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		isOwner, err := ownSvc.IsOwner(r.Context(), petID, claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !isOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial. Requiere ser dueño: la autorización se chequea server-side ANTES de cualquier escritura; si falla es 403, no un error de validación.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a tocar (nil = no tocar)"
// @Success 200 {object} petResponse
// @Failure 400 {object} validationResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, ownSvc *ownership.Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if !authorize(w, r, ownSvc, log, claims.UserID, petID, "update") {
			return
		}

		var req updatePetRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), petID, UpdateInput{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated))
	}
}

func deletePetHandler(svc *Service, ownSvc *ownership.Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if !authorize(w, r, ownSvc, log, claims.UserID, petID, "delete") {
			return
		}

		if err := svc.Delete(r.Context(), petID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// uploadPhotoHandler recibe el blob y lo pasa a la caja negra de archivos;
// al Pet solo se le asocia la key que devuelve el uploader.
func uploadPhotoHandler(svc *Service, ownSvc *ownership.Service, uploader files.Uploader, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := svc.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		if !authorize(w, r, ownSvc, log, claims.UserID, petID, "upload_photo") {
			return
		}

		key, err := uploader.Upload(r.Context(), petID, http.MaxBytesReader(w, r.Body, maxPhotoBytes))
		if err != nil {
			http.Error(w, "upload failed", http.StatusBadRequest)
			return
		}

		p, err := svc.SetPhoto(r.Context(), petID, key)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// authorize corre el predicado CanModify antes de cualquier escritura.
// Devuelve false (y responde 403) si la mutación no está permitida.
// Los rechazos se loguean como exige el manejo de AuthorizationError.
func authorize(w http.ResponseWriter, r *http.Request, ownSvc *ownership.Service, log logger.Logger, userID, petID, action string) bool {
	can, err := ownSvc.CanModify(r.Context(), userID, petID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	if !can {
		log.Warn("authorization denied",
			"user_id", userID,
			"pet_id", petID,
			"action", action,
		)
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

// writeServiceError mapea errores del service a HTTP.
// ValidationError sale como lista estructurada de errores por campo.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: ve.Fields})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		PhotoKey:    p.PhotoKey,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
