package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"lotpool/internal/custody"
	"lotpool/internal/random"
	"lotpool/internal/services"
	"lotpool/internal/storage/memory"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := services.NewRegistry(random.WeakTimingEntropy{}, custody.NewMemoryLedger(), memory.New())
	router := gin.New()
	NewHTTPHandler(registry).RegisterRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createBody(id string, fee int64, drawTime time.Time) string {
	return fmt.Sprintf(`{"id":%q,"name":"Test Pot","entryFee":%d,"drawTime":%q,"caller":"alice"}`,
		id, fee, drawTime.Format(time.RFC3339))
}

func TestCreateRoundEndpoint(t *testing.T) {
	router := newTestRouter()
	future := time.Now().Add(time.Hour)

	t.Run("creates a round", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds", createBody("r1", 10, future))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var details map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if details["state"] != "OPEN" {
			t.Errorf("Expected state OPEN, got %v", details["state"])
		}
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds", createBody("r1", 10, future))
		if w.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("past deadline is a bad request", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds", createBody("r2", 10, time.Now().Add(-time.Hour)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds", `{"name":"nope"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestRoundCommandEndpoints(t *testing.T) {
	router := newTestRouter()
	future := time.Now().Add(time.Hour)
	if w := doJSON(router, http.MethodPost, "/rounds", createBody("r1", 10, future)); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	t.Run("enter with the exact fee", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds/r1/enter", `{"caller":"bob","payment":10}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("wrong payment is a bad request", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds/r1/enter", `{"caller":"carol","payment":9}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "PAYMENT_MISMATCH") {
			t.Errorf("Expected a PAYMENT_MISMATCH code, got %s", w.Body.String())
		}
	})

	t.Run("double entry is a conflict", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds/r1/enter", `{"caller":"bob","payment":10}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("premature draw is a conflict", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds/r1/draw", `{"caller":"anyone"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("sponsor adds to the pool", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/rounds/r1/sponsor", `{"caller":"patron","amount":5}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var details map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if details["poolBalance"] != float64(15) {
			t.Errorf("Expected pool 15, got %v", details["poolBalance"])
		}
	})
}

func TestRoundReadEndpoints(t *testing.T) {
	router := newTestRouter()
	future := time.Now().Add(time.Hour)
	if w := doJSON(router, http.MethodPost, "/rounds", createBody("r1", 10, future)); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(router, http.MethodPost, "/rounds/r1/enter", `{"caller":"bob","payment":10}`); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	t.Run("lists ids", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/rounds", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"r1"`) {
			t.Errorf("Expected r1 in ids, got %s", w.Body.String())
		}
	})

	t.Run("details for an unknown round is a 404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/rounds/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("participants in entry order", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/rounds/r1/participants", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"bob"`) {
			t.Errorf("Expected bob in participants, got %s", w.Body.String())
		}
	})

	t.Run("can-draw is false before the deadline", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/rounds/r1/can-draw", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"canDraw":false`) {
			t.Errorf("Expected canDraw false, got %s", w.Body.String())
		}
	})

	t.Run("event history starts with round.created", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/rounds/r1/events", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := w.Body.String()
		if !strings.Contains(body, "round.created") || !strings.Contains(body, "round.entered") {
			t.Errorf("Expected created and entered events, got %s", body)
		}
	})
}
