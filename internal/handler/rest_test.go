package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/auth"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// failingStore wraps a MemoryStore and fails every call with err.
type failingStore struct {
	*store.MemoryStore
	err error
}

func (f *failingStore) List(_ context.Context) ([]model.Book, error) {
	return nil, f.err
}

func (f *failingStore) FindByID(_ context.Context, _ string) (*model.Book, bool, error) {
	return nil, false, f.err
}

func (f *failingStore) Add(_ context.Context, _ *model.Book) (*model.Book, error) {
	return nil, f.err
}

const validBookJSON = `{
	"id": "B1",
	"isbn": "1234567890",
	"title": "T",
	"authors": ["A"],
	"edition": "1st",
	"publication_year": "2000",
	"category": "fiction"
}`

func newTestRouter(s store.Store) *mux.Router {
	router := mux.NewRouter()
	NewRESTHandler(s, zap.NewNop()).RegisterRoutes(router)
	return router
}

func seedStore(t *testing.T, ids ...string) *store.MemoryStore {
	t.Helper()

	s := store.NewMemoryStore()
	for i, id := range ids {
		category := model.CategoryFiction
		if i%2 == 1 {
			category = model.CategoryNonFiction
		}
		_, err := s.Add(context.Background(), &model.Book{
			ID:              id,
			ISBN:            "1234567890",
			Title:           "Title " + id,
			Authors:         []string{"A"},
			Edition:         "1st",
			PublicationYear: "2000",
			Category:        category,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	return s
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestNewRESTHandler(t *testing.T) {
	// Act
	handler := NewRESTHandler(store.NewMemoryStore(), zap.NewNop())

	// Assert
	if handler == nil {
		t.Fatal("NewRESTHandler() returned nil")
	}
	if handler.store == nil {
		t.Error("store should not be nil")
	}
	if handler.validate == nil {
		t.Error("validator should not be nil")
	}
}

func TestRESTHandler_HealthCheck(t *testing.T) {
	// Arrange
	router := newTestRouter(store.NewMemoryStore())

	// Act
	rr := doRequest(router, http.MethodGet, "/health", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decode[model.APIResponse[HealthResponse]](t, rr)
	if resp.Data.Status != "healthy" || resp.Data.Version != Version {
		t.Errorf("unexpected health response: %+v", resp.Data)
	}
}

func TestRESTHandler_ReadyCheck(t *testing.T) {
	router := newTestRouter(seedStore(t, "A1", "B1"))

	rr := doRequest(router, http.MethodGet, "/ready", "")

	resp := decode[model.APIResponse[ReadyResponse]](t, rr)
	if resp.Data.Books != 2 || resp.Data.Capacity != store.DefaultCapacity {
		t.Errorf("unexpected ready response: %+v", resp.Data)
	}
}

func TestRESTHandler_ListBooks(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantIDs   []string
		wantError string
	}{
		{name: "all in insertion order", query: "", wantCode: http.StatusOK, wantIDs: []string{"C1", "A1", "B1"}},
		{name: "fiction", query: "?category=FICTION", wantCode: http.StatusOK, wantIDs: []string{"C1", "B1"}},
		{name: "non fiction alias", query: "?category=non%20fiction", wantCode: http.StatusOK, wantIDs: []string{"A1"}},
		{name: "unknown category", query: "?category=Mystery", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router := newTestRouter(seedStore(t, "C1", "A1", "B1"))

			// Act
			rr := doRequest(router, http.MethodGet, "/api/v1/books"+tt.query, "")

			// Assert
			if rr.Code != tt.wantCode {
				t.Fatalf("Status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			resp := decode[model.APIResponse[[]model.Book]](t, rr)
			if len(resp.Data) != len(tt.wantIDs) {
				t.Fatalf("got %d books, want %d", len(resp.Data), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Data[i].ID != id {
					t.Errorf("book[%d].ID = %s, want %s", i, resp.Data[i].ID, id)
				}
			}
		})
	}
}

func TestRESTHandler_ListBooks_StoreError(t *testing.T) {
	router := newTestRouter(&failingStore{MemoryStore: store.NewMemoryStore(), err: errors.New("boom")})

	rr := doRequest(router, http.MethodGet, "/api/v1/books", "")

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestRESTHandler_GetBook(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{"exact id", "AB12", http.StatusOK},
		{"lowercase id", "ab12", http.StatusOK},
		{"prefix only", "AB1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(seedStore(t, "AB12"))

			rr := doRequest(router, http.MethodGet, "/api/v1/books/"+tt.id, "")

			if rr.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRESTHandler_GetBook_StoreError(t *testing.T) {
	router := newTestRouter(&failingStore{MemoryStore: store.NewMemoryStore(), err: context.DeadlineExceeded})

	rr := doRequest(router, http.MethodGet, "/api/v1/books/X", "")

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestRESTHandler_CreateBook(t *testing.T) {
	// Arrange
	s := store.NewMemoryStore()
	router := newTestRouter(s)

	// Act
	rr := doRequest(router, http.MethodPost, "/api/v1/books", validBookJSON)

	// Assert
	if rr.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decode[model.APIResponse[model.Book]](t, rr)
	if resp.Data.Category != model.CategoryFiction {
		t.Errorf("Category = %s, want %s", resp.Data.Category, model.CategoryFiction)
	}
	if s.Len() != 1 {
		t.Errorf("store has %d books, want 1", s.Len())
	}
}

func TestRESTHandler_CreateBook_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"malformed json", `{"id":`, "invalid request body"},
		{"bad isbn", strings.Replace(validBookJSON, `"1234567890"`, `"12345"`, 1), "isbn must contain"},
		{"bad id", strings.Replace(validBookJSON, `"B1"`, `"B-1"`, 1), "id must be alphanumeric"},
		{"bad year", strings.Replace(validBookJSON, `"2000"`, `"2101"`, 1), "publication_year must be a 4-digit year"},
		{"bad category", strings.Replace(validBookJSON, `"fiction"`, `"Mystery"`, 1), "category must be Fiction or Non-fiction"},
		{"no authors", strings.Replace(validBookJSON, `["A"]`, `[]`, 1), "authors is required"},
		{"blank author", strings.Replace(validBookJSON, `["A"]`, `["A", ""]`, 1), "is required"},
		{"missing title", strings.Replace(validBookJSON, `"title": "T",`, "", 1), "title is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := store.NewMemoryStore()
			router := newTestRouter(s)

			// Act
			rr := doRequest(router, http.MethodPost, "/api/v1/books", tt.body)

			// Assert
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			resp := decode[model.APIResponse[any]](t, rr)
			if resp.Success {
				t.Error("Success = true, want false")
			}
			if !strings.Contains(resp.Error, tt.wantMessage) {
				t.Errorf("Error = %q, want it to contain %q", resp.Error, tt.wantMessage)
			}
			if s.Len() != 0 {
				t.Error("invalid book must not be stored")
			}
		})
	}
}

func TestRESTHandler_CreateBook_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		store    store.Store
		wantCode int
	}{
		{"duplicate id ignoring case", seedStore(t, "b1"), http.StatusConflict},
		{"catalog full", func() store.Store {
			s := store.NewMemoryStore(store.WithCapacity(1))
			_, _ = s.Add(context.Background(), &model.Book{
				ID: "X1", ISBN: "1234567890", Title: "T", Authors: []string{"A"},
				Edition: "1", PublicationYear: "2000", Category: model.CategoryFiction,
			})
			return s
		}(), http.StatusInsufficientStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.store)

			rr := doRequest(router, http.MethodPost, "/api/v1/books", validBookJSON)

			if rr.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRESTHandler_UpdateBook(t *testing.T) {
	// Arrange
	s := seedStore(t, "B1")
	router := newTestRouter(s)

	// Act
	rr := doRequest(router, http.MethodPatch, "/api/v1/books/b1",
		`{"title":"New","isbn":"bad","category":"non-fiction"}`)

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decode[model.APIResponse[model.UpdateResult]](t, rr)
	if resp.Data.Book.Title != "New" {
		t.Errorf("Title = %s, want New", resp.Data.Book.Title)
	}
	if resp.Data.Book.Category != model.CategoryNonFiction {
		t.Errorf("Category = %s, want %s", resp.Data.Book.Category, model.CategoryNonFiction)
	}
	if len(resp.Data.Skipped) != 1 || resp.Data.Skipped[0].Field != model.FieldISBN {
		t.Errorf("Skipped = %+v, want only isbn", resp.Data.Skipped)
	}
}

func TestRESTHandler_UpdateBook_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     string
		wantCode int
	}{
		{"not found", "missing", `{"title":"x"}`, http.StatusNotFound},
		{"empty patch", "B1", `{}`, http.StatusBadRequest},
		{"malformed", "B1", `{"title":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(seedStore(t, "B1"))

			rr := doRequest(router, http.MethodPatch, "/api/v1/books/"+tt.id, tt.body)

			if rr.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestRESTHandler_DeleteBook(t *testing.T) {
	// Arrange
	s := seedStore(t, "A1", "B1", "C1")
	router := newTestRouter(s)

	// Act
	rr := doRequest(router, http.MethodDelete, "/api/v1/books/B1", "")
	again := doRequest(router, http.MethodDelete, "/api/v1/books/B1", "")

	// Assert
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if again.Code != http.StatusNotFound {
		t.Errorf("second delete Status = %d, want %d", again.Code, http.StatusNotFound)
	}
	books, _ := s.List(context.Background())
	if len(books) != 2 || books[0].ID != "A1" || books[1].ID != "C1" {
		t.Errorf("remaining books = %+v", books)
	}
}

func TestRESTHandler_RegisterRoutes(t *testing.T) {
	router := newTestRouter(seedStore(t, "B1"))

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/ready"},
		{http.MethodGet, "/api/v1/books"},
		{http.MethodGet, "/api/v1/books/B1"},
		{http.MethodDelete, "/api/v1/books/B1"},
	}

	for _, route := range routes {
		rr := doRequest(router, route.method, route.path, "")
		if rr.Code == http.StatusNotFound || rr.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s returned %d", route.method, route.path, rr.Code)
		}
	}

	rr := doRequest(router, http.MethodPut, "/api/v1/books/B1", validBookJSON)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT Status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestRESTHandler_ContentType(t *testing.T) {
	router := newTestRouter(store.NewMemoryStore())

	rr := doRequest(router, http.MethodGet, "/api/v1/books", "")

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
}

func TestRESTHandler_LogsCallerSubject(t *testing.T) {
	tests := []struct {
		name     string
		identity *auth.Identity
		want     string
	}{
		{"authenticated", &auth.Identity{Scheme: auth.SchemeAPIKey, Subject: "front-desk"}, "front-desk"},
		{"anonymous", nil, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			core, logs := observer.New(zap.InfoLevel)
			router := mux.NewRouter()
			NewRESTHandler(store.NewMemoryStore(), zap.New(core)).RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(validBookJSON))
			req.Header.Set("Content-Type", "application/json")
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), tt.identity))
			}
			rr := httptest.NewRecorder()

			// Act
			router.ServeHTTP(rr, req)

			// Assert
			if rr.Code != http.StatusCreated {
				t.Fatalf("Status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
			}
			entries := logs.FilterMessage("book created").All()
			if len(entries) != 1 {
				t.Fatalf("got %d book created entries, want 1", len(entries))
			}
			if got := entries[0].ContextMap()["subject"]; got != tt.want {
				t.Errorf("subject = %v, want %s", got, tt.want)
			}
		})
	}
}
