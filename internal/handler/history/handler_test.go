package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yuchinlin/line-gemini-bot/internal/model/chat"
)

type fakeStore struct {
	exchanges map[string][]chat.Exchange
	listErr   error
	clearErr  error
	cleared   []string
}

func (f *fakeStore) List(_ context.Context, userID string) ([]chat.Exchange, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.exchanges[userID], nil
}

func (f *fakeStore) Clear(_ context.Context, userID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

func setupRouter(store *fakeStore) *chi.Mux {
	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r
}

func TestGetHistory(t *testing.T) {
	store := &fakeStore{exchanges: map[string][]chat.Exchange{
		"U123": {
			{
				UserID:    "U123",
				UserText:  "hello",
				BotText:   "hi there",
				Timestamp: time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC),
			},
		},
	}}
	r := setupRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/history/U123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload []map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 exchange, got %d", len(payload))
	}
	if payload[0]["user"] != "hello" || payload[0]["bot"] != "hi there" {
		t.Fatalf("unexpected payload: %v", payload[0])
	}
	if payload[0]["timestamp"] != "2024-03-10 06:00:00" {
		t.Fatalf("unexpected timestamp: %q", payload[0]["timestamp"])
	}
}

func TestGetHistoryEmptyUser(t *testing.T) {
	r := setupRouter(&fakeStore{exchanges: map[string][]chat.Exchange{}})

	req := httptest.NewRequest(http.MethodGet, "/history/unknown", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestGetHistoryStoreFailure(t *testing.T) {
	r := setupRouter(&fakeStore{listErr: errors.New("locked")})

	req := httptest.NewRequest(http.MethodGet, "/history/U123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestDeleteHistory(t *testing.T) {
	store := &fakeStore{exchanges: map[string][]chat.Exchange{}}
	r := setupRouter(store)

	req := httptest.NewRequest(http.MethodDelete, "/history/U123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(store.cleared) != 1 || store.cleared[0] != "U123" {
		t.Fatalf("expected clear for U123, got %v", store.cleared)
	}

	var payload map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if payload["status"] != "deleted" {
		t.Fatalf("unexpected status: %q", payload["status"])
	}
}

func TestDeleteHistoryStoreFailure(t *testing.T) {
	r := setupRouter(&fakeStore{clearErr: errors.New("locked")})

	req := httptest.NewRequest(http.MethodDelete, "/history/U123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
