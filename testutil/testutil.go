// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/club-leaderboard/auth"
	"github.com/danielhkuo/club-leaderboard/cliparse"
	"github.com/danielhkuo/club-leaderboard/db"
	"github.com/danielhkuo/club-leaderboard/judge"
)

// TestSyncSecret signs trigger tokens in tests
const TestSyncSecret = "test-sync-secret"

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		JudgeTimeout: 5 * time.Second,
		SyncSecret:   TestSyncSecret,
		KafkaTopic:   "leaderboard.updated",
	}
}

// TriggerToken returns a valid bearer header value for POST /leaderboard/sync
func TriggerToken(t *testing.T) string {
	t.Helper()

	token, err := auth.IssueTriggerToken(TestSyncSecret, "test", time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue trigger token: %v", err)
	}
	return "Bearer " + token
}

// Participant is one entry of a rank payload: login, display name, avatar.
type Participant [3]string

// RankJSON builds a judge rank payload. Each submission is
// [participantID, problemIndex, verdict, offsetSeconds].
func RankJSON(t *testing.T, lengthMs int64, participants map[string]Participant, submissions [][4]any) string {
	t.Helper()

	payload := map[string]any{
		"title":        "Test Contest",
		"length":       lengthMs,
		"participants": participants,
		"submissions":  submissions,
	}
	if submissions == nil {
		payload["submissions"] = [][4]any{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to encode rank payload: %v", err)
	}
	return string(body)
}

// FakeJudge serves the judge contest list and rank endpoints.
type FakeJudge struct {
	Server *httptest.Server

	mu         sync.Mutex
	latestID   string
	ranks      map[string]string
	failStatus int

	ListHits atomic.Int32
	RankHits atomic.Int32
}

// NewFakeJudge starts a fake judge that is closed with the test
func NewFakeJudge(t *testing.T) *FakeJudge {
	t.Helper()

	f := &FakeJudge{ranks: make(map[string]string)}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /contest/data", func(w http.ResponseWriter, r *http.Request) {
		f.ListHits.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failStatus != 0 {
			w.WriteHeader(f.failStatus)
			return
		}
		if f.latestID == "" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		fmt.Fprintf(w, `{"data":[[%s,"Contest"]]}`, f.latestID)
	})

	mux.HandleFunc("GET /contest/rank/single/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.RankHits.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failStatus != 0 {
			w.WriteHeader(f.failStatus)
			return
		}
		body, ok := f.ranks[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// SetLatest sets the raw JSON id reported as the newest contest, e.g. `42` or `"0042"`.
func (f *FakeJudge) SetLatest(rawID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestID = rawID
}

// SetRank registers the rank payload for a contest id
func (f *FakeJudge) SetRank(id int64, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranks[fmt.Sprint(id)] = body
}

// FailWith makes every endpoint answer with status (0 restores normal answers)
func (f *FakeJudge) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

// Client returns a judge client pointed at the fake
func (f *FakeJudge) Client() *judge.Client {
	return judge.NewClient(judge.Config{BaseURL: f.Server.URL, Timeout: 5 * time.Second}, nil)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, strings.TrimSpace(w.Body.String()))
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
