package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/auth"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RESTHandler handles REST API requests for books.
type RESTHandler struct {
	store    store.Store
	logger   *zap.Logger
	validate *validator.Validate
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(s store.Store, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:    s,
		logger:   logger,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/books", h.ListBooks).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/books", h.CreateBook).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/books/{id}", h.GetBook).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/books/{id}", h.UpdateBook).Methods(http.MethodPatch)
	router.HandleFunc("/api/v1/books/{id}", h.DeleteBook).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	response := ReadyResponse{
		Status:   "ready",
		Books:    h.store.Len(),
		Capacity: h.store.Capacity(),
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ListBooks handles GET /api/v1/books requests. The optional category
// query parameter filters by category.
func (h *RESTHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		books []model.Book
		err   error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		books, err = h.store.ListByCategory(ctx, category)
	} else {
		books, err = h.store.List(ctx)
	}
	if err != nil {
		h.handleStoreError(w, err, "list books")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(books))
}

// GetBook handles GET /api/v1/books/{id} requests.
func (h *RESTHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	book, ok, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get book")
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "book not found")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(book))
}

// CreateBook handles POST /api/v1/books requests.
func (h *RESTHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var input createBookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&input); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	book, err := h.store.Add(r.Context(), input.toBook())
	if err != nil {
		h.handleStoreError(w, err, "create book")
		return
	}
	h.logger.Info("book created", zap.String("id", book.ID), zap.String("subject", subject(r)))

	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(book))
}

// UpdateBook handles PATCH /api/v1/books/{id} requests. Fields that fail
// validation are skipped and listed in the response.
func (h *RESTHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch model.BookPatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.IsEmpty() {
		h.writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	result, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		h.handleStoreError(w, err, "update book")
		return
	}

	h.logger.Info("book updated",
		zap.String("id", result.Book.ID),
		zap.String("subject", subject(r)),
		zap.Any("skipped", result.Skipped),
	)

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(result))
}

// DeleteBook handles DELETE /api/v1/books/{id} requests.
func (h *RESTHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Remove(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete book")
		return
	}
	h.logger.Info("book deleted", zap.String("id", id), zap.String("subject", subject(r)))

	h.writeJSON(w, http.StatusNoContent, nil)
}

// subject names the authenticated caller, or "anonymous".
func subject(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return id.Subject
	}
	return "anonymous"
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "book not found")
	case errors.Is(err, store.ErrDuplicateID):
		h.writeError(w, http.StatusConflict, "book id already exists")
	case errors.Is(err, store.ErrCapacityExceeded):
		h.writeError(w, http.StatusInsufficientStorage, "catalog is full")
	case errors.Is(err, model.ErrUnknownCategory):
		h.writeError(w, http.StatusBadRequest, "category must be "+model.CategoryNames(" or "))
	case errors.Is(err, model.ErrInvalidField), errors.Is(err, store.ErrNilBook):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes the error envelope with the given status code.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.NewErrorResponse[any](message))
}
