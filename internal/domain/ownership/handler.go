package ownership

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-registry/internal/middleware"
	"pet-registry/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/pets/{petID}/owners", func(or chi.Router) {
		or.Get("/", listOwnersHandler(svc))
		or.Post("/", addOwnerHandler(svc, log))
		or.Delete("/{userID}", removeOwnerHandler(svc, log))
		or.Post("/{userID}/primary", transferPrimaryHandler(svc, log))
	})
}

type ownerResponse struct {
	UserID    string    `json:"user_id"`
	IsPrimary bool      `json:"is_primary"`
	AddedAt   time.Time `json:"added_at,omitzero"`
}

// listOwnersHandler godoc
// @Summary Listar dueños de una mascota
// @Description Devuelve el set de dueños con su metadata. Solo visible para dueños.
// @Tags owners
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} ownerResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/owners [get]
func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")

		isOwner, err := svc.IsOwner(r.Context(), petID, claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !isOwner {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.Owners(r.Context(), petID)
		if err != nil {
			writeOwnershipError(w, err)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type addOwnerRequest struct {
	UserID string `json:"user_id"`
}

// addOwnerHandler godoc
// @Summary Agregar co-dueño
// @Description Solo el dueño principal puede invitar. Requiere la generación multi-owner.
// @Tags owners
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body addOwnerRequest true "Usuario a sumar como co-dueño"
// @Success 201 {object} ownerResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "invalid state"
// @Router /pets/{petID}/owners [post]
func addOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")

		var req addOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.AddOwner(r.Context(), petID, claims.UserID, req.UserID)
		if err != nil {
			logDenied(log, err, claims.UserID, petID, "add_owner")
			writeOwnershipError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

func removeOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		userID := chi.URLParam(r, "userID")

		if err := svc.RemoveOwner(r.Context(), petID, claims.UserID, userID); err != nil {
			logDenied(log, err, claims.UserID, petID, "remove_owner")
			writeOwnershipError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// transferPrimaryHandler godoc
// @Summary Transferir dueño principal
// @Description Mueve la bandera primary a otro dueño existente. Solo el primary actual puede transferir.
// @Tags owners
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param userID path string true "Nuevo dueño principal (ya debe ser dueño)"
// @Success 204 {string} string ""
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/owners/{userID}/primary [post]
func transferPrimaryHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		userID := chi.URLParam(r, "userID")

		if err := svc.TransferPrimary(r.Context(), petID, claims.UserID, userID); err != nil {
			logDenied(log, err, claims.UserID, petID, "transfer_primary")
			writeOwnershipError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// Los rechazos de autorización se loguean; el resto de los errores no.
func logDenied(log logger.Logger, err error, userID, petID, action string) {
	if errors.Is(err, ErrForbidden) {
		log.Warn("authorization denied",
			"user_id", userID,
			"pet_id", petID,
			"action", action,
		)
	}
}

func writeOwnershipError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, "invalid state", http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toOwnerResponse(o Ownership) ownerResponse {
	return ownerResponse{
		UserID:    o.UserID,
		IsPrimary: o.IsPrimary,
		AddedAt:   o.AddedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
