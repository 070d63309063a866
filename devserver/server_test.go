package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"awsoramazon/backend/db"
	"awsoramazon/backend/handlers"
	"awsoramazon/backend/types"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := db.NewMemoryStore()
	for _, in := range []types.QuestionInput{
		{ID: "q1", Text: "S3 stores objects.", Answer: types.ChoiceAWS},
		{ID: "q2", Text: "Alexa answers questions.", Answer: types.ChoiceAmazon},
	} {
		if err := store.CreateQuestion(context.Background(), in.Revision(in.ID, time.Now())); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewRouter(handlers.New(store, store, time.Hour), []string{"https://quiz.example"})
}

// TestRouterServesSeededQuiz verifies path parameters reach the handler.
func TestRouterServesSeededQuiz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quizzes/s1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view types.QuizView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.QuizID != "s1" || len(view.Questions) != 2 || view.Questions[0].ID != "q2" {
		t.Fatalf("unexpected view %+v", view)
	}
}

// TestRouterPrefersStaticIDsRoute verifies /api/quizzes/ids is not read as a quiz id.
func TestRouterPrefersStaticIDsRoute(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quizzes/ids?count=1", nil))
	var ids types.QuizIDs
	if err := json.Unmarshal(rec.Body.Bytes(), &ids); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ids.Total != 1 || len(ids.IDs) != 1 {
		t.Fatalf("unexpected ids %+v", ids)
	}
}

// TestRouterGradesWithHeaders verifies headers and bodies survive the adapter.
func TestRouterGradesWithHeaders(t *testing.T) {
	srv := newTestServer(t)
	body := `{"answers":[{"questionId":"q1","choice":"aws"}]}`
	var first string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/quizzes/s1", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "dev-1")
		req.Header.Set("Origin", "https://quiz.example")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "https://quiz.example" {
			t.Fatalf("missing CORS origin: %v", rec.Header())
		}
		if i == 0 {
			first = rec.Body.String()
		} else if rec.Body.String() != first {
			t.Fatalf("expected replayed body")
		}
	}
}

// TestRouterPreflight verifies OPTIONS requests are answered by the CORS layer.
func TestRouterPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/questions/q1", nil)
	req.Header.Set("Origin", "https://quiz.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "If-Match")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code >= 300 {
		t.Fatalf("expected preflight success, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://quiz.example" {
		t.Fatalf("unexpected preflight headers %v", rec.Header())
	}
}

// TestRouterNotModified verifies conditional GETs return 304 with no body.
func TestRouterNotModified(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions/q1", nil))
	etag := rec.Header().Get("ETag")
	if rec.Code != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with etag, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/questions/q1", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 304, got %d %q", rec.Code, rec.Body.String())
	}
}
