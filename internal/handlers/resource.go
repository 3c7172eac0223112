package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/healthtips-backend/internal/middleware"
	"github.com/AnshRaj112/healthtips-backend/internal/repository"
	"github.com/AnshRaj112/healthtips-backend/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
)

const maxBodyBytes = 1 << 20

// Store is the persistence a Resource needs; *repository.Collection satisfies it.
type Store[T any] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc *T) (*T, error)
	Update(ctx context.Context, id string, fields bson.M) (*repository.UpdateResult[T], error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Resource serves the CRUD endpoints of one collection.
type Resource[T any] struct {
	store Store[T]

	name   string // "recipe", used in messages
	title  string // "Recipe"
	plural string // "recipes"

	validate func(payload map[string]any, mode validation.Mode) []string
	decode   func(payload map[string]any) *T
	fields   func(payload map[string]any) bson.M
}

// List handles GET /
func (h *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.FindAll(r.Context())
	if err != nil {
		h.fail(w, r, "fetch", h.plural, err)
		return
	}
	count := len(docs)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Count: &count, Data: docs})
}

// Get handles GET /{id}
func (h *Resource[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	doc, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "fetch", h.name, err)
		return
	}
	if doc == nil {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: doc})
}

// Create handles POST /
func (h *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := h.validate(payload, validation.Create); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	doc, err := h.store.Create(r.Context(), h.decode(payload))
	if err != nil {
		h.fail(w, r, "create", h.name, err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Message: h.title + " created successfully",
		Data:    doc,
	})
}

// Update handles PUT /{id} and PATCH /{id}. Only the fields present in the
// body change.
func (h *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if errs := h.validate(payload, validation.Update); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	res, err := h.store.Update(r.Context(), id, h.fields(payload))
	if err != nil {
		h.fail(w, r, "update", h.name, err)
		return
	}
	if !res.Matched {
		h.notFound(w)
		return
	}

	msg := h.title + " updated successfully"
	if !res.Changed {
		msg = "No changes made to " + h.name
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: msg, Data: res.Document})
}

// Delete handles DELETE /{id}
func (h *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, "delete", h.name, err)
		return
	}
	if !deleted {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: h.title + " deleted successfully"})
}

// id checks the path identifier before anything touches the database.
func (h *Resource[T]) id(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !repository.IsValidID(id) {
		writeError(w, http.StatusBadRequest, "Invalid "+h.name+" ID format", nil)
		return "", false
	}
	return id, true
}

func (h *Resource[T]) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, h.title+" not found", nil)
}

func (h *Resource[T]) fail(w http.ResponseWriter, r *http.Request, action, what string, err error) {
	if errors.Is(err, repository.ErrInvalidID) {
		writeError(w, http.StatusBadRequest, "Invalid "+h.name+" ID format", nil)
		return
	}
	slog.Error("failed to "+action+" "+what,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	writeError(w, http.StatusInternalServerError, "Failed to "+action+" "+what, err.Error())
}

// decodeBody reads a JSON object. Anything else, including an empty body or
// a top-level array, is rejected with 400.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}
	return payload, true
}
