// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/internal/ratelimit"
	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/internal/upstream"
	"github.com/pdiddy/feastfit/pkg/types"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type mockChat struct {
	mu      sync.Mutex
	reply   []byte
	err     error
	prompts []string
}

func (m *mockChat) Chat(_ context.Context, query string, _ types.GeoContext) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, query)
	return m.reply, m.err
}

func (m *mockChat) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type failingStore struct{}

func (failingStore) Insert(context.Context, types.MealLog) (types.MealLog, error) {
	return types.MealLog{}, errors.New("disk full")
}

func (failingStore) ListByUser(context.Context, string, int) ([]types.MealLog, error) {
	return nil, errors.New("disk full")
}

func (failingStore) ListByUserOn(context.Context, string, time.Time) ([]types.MealLog, error) {
	return nil, errors.New("disk full")
}

func newTestServer(t *testing.T, chat *mockChat, store LogStore, limit int) *httptest.Server {
	t.Helper()
	rl := types.DefaultConfig().RateLimit
	if limit > 0 {
		rl.MaxRequests = limit
	}
	p := recommend.New(chat, ratelimit.New(rl), types.DefaultConfig(),
		recommend.WithClock(func() time.Time { return fixedNow }))
	ts := httptest.NewServer(New(p, store, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sqliteStore(t *testing.T) *meallog.Store {
	t.Helper()
	s, err := meallog.Open(types.StoreConfig{DSN: filepath.Join(t.TempDir(), "logs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func post(t *testing.T, ts *httptest.Server, path, body string, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

const searchBody = `{"location":"SF","caloriesTarget":600,"proteinMin":35,"query":"salad"}`

func TestSearch_FallbackResponse(t *testing.T) {
	ts := newTestServer(t, &mockChat{reply: []byte(`{}`)}, nil, 0)

	resp, body := post(t, ts, "/api/search-restaurants", searchBody, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	restaurants, ok := body["restaurants"].([]any)
	require.True(t, ok)
	require.Len(t, restaurants, 1)
	first := restaurants[0].(map[string]any)
	assert.Equal(t, "FeastFit Demo Kitchen", first["name"])
	assert.Equal(t, float64(76), first["fitScore"])

	snap, ok := body["snapshot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "salad", snap["query"])
	assert.Equal(t, "2026-03-10T15:00:00Z", snap["timestamp"])
	assert.Len(t, snap["restaurants"], 1)
}

func TestSearch_SnapshotUsesNormalizedRequest(t *testing.T) {
	ts := newTestServer(t, &mockChat{reply: []byte(`{}`)}, nil, 0)

	resp, body := post(t, ts, "/api/search-restaurants",
		`{"location":"  SF  ","caloriesTarget":600,"proteinMin":35,"query":"\tsalad \n"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap, ok := body["snapshot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SF", snap["location"])
	assert.Equal(t, "salad", snap["query"])
}

func TestSearch_OutOfRangePriceLevel(t *testing.T) {
	chat := &mockChat{reply: []byte(`{}`)}
	ts := newTestServer(t, chat, nil, 0)

	resp, body := post(t, ts, "/api/search-restaurants",
		`{"location":"SF","caloriesTarget":600,"proteinMin":35,"query":"salad","priceLevels":[4611686018427387904]}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, chat.lastPrompt())
}

func TestSearch_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		chat   *mockChat
		body   string
		status int
	}{
		{"bad json", &mockChat{reply: []byte(`{}`)}, `{"location":`, http.StatusBadRequest},
		{"missing fields", &mockChat{reply: []byte(`{}`)}, `{"location":"SF"}`, http.StatusBadRequest},
		{"missing key", &mockChat{err: upstream.ErrMissingAPIKey}, searchBody, http.StatusInternalServerError},
		{"upstream failure", &mockChat{err: &upstream.StatusError{Code: 503}}, searchBody, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.chat, nil, 0)
			resp, body := post(t, ts, "/api/search-restaurants", tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSearch_RateLimitPerForwardedClient(t *testing.T) {
	ts := newTestServer(t, &mockChat{reply: []byte(`{}`)}, nil, 2)
	alice := map[string]string{"X-Forwarded-For": "10.0.0.1, 172.16.0.1"}
	bob := map[string]string{"X-Forwarded-For": "10.0.0.2"}

	for i := 0; i < 2; i++ {
		resp, _ := post(t, ts, "/api/search-restaurants", searchBody, alice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := post(t, ts, "/api/search-restaurants", searchBody, alice)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body["error"], "Too many requests")

	resp, _ = post(t, ts, "/api/search-restaurants", searchBody, bob)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, nil, 0)
	for _, path := range []string{"/api/search-restaurants", "/api/refine-results", "/api/coach", "/api/log-meal"} {
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}

	resp, _ := post(t, ts, "/api/logs?userId=u1", `{}`, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, nil, 0)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/coach", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), HeaderLastSearch)
}

func TestRefine(t *testing.T) {
	chat := &mockChat{reply: []byte(`{"response":{"text":"Pick R1."}}`)}
	ts := newTestServer(t, chat, nil, 0)

	resp, body := post(t, ts, "/api/refine-results", `{
		"location":"SF","caloriesTarget":600,"proteinMin":35,"query":"salad",
		"refineMessage":"vegetarian only",
		"restaurants":[{"id":"a","name":"R1","fitScore":90,"dishes":[{"name":"Tofu bowl","estimatedCalories":550,"estimatedProtein":30,"confidence":0.6}]}]
	}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Pick R1.", body["message"])
	assert.Contains(t, chat.lastPrompt(), `{"name":"Tofu bowl","kcal":550,"protein":30}`)

	resp, _ = post(t, ts, "/api/refine-results", `{"location":"SF"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCoach_HeaderContext(t *testing.T) {
	chat := &mockChat{reply: []byte(`{"text":"Eat the salmon."}`)}
	ts := newTestServer(t, chat, nil, 0)

	snapshot := `{"location":"SF","caloriesTarget":650,"proteinMin":40,"query":"fish","timestamp":"2026-03-10T12:00:00Z",` +
		`"restaurants":[{"name":"Salmon House","rating":4.6,"fitScore":91,"fitLabel":"Perfect fit","dishes":[]}]}`
	logs := `[{"id":"g1","restaurantId":"x","restaurantName":"Cafe","fitScore":70,"fitLabel":"Great fit","dishName":"Oats",` +
		`"calories":350,"protein":15,"mealType":"breakfast","createdAt":"2026-03-10T08:00:00Z"}]`

	resp, body := post(t, ts, "/api/coach", `{"message":"dinner ideas?"}`, map[string]string{
		HeaderLastSearch: url.PathEscape(snapshot),
		HeaderGuestLogs:  url.PathEscape(logs),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Eat the salmon.", body["reply"])

	p := chat.lastPrompt()
	assert.Contains(t, p, "roughly 650 kcal")
	assert.Contains(t, p, "Salmon House")
	assert.Contains(t, p, "logged 1 meal(s), totaling about 350 kcal and 15g protein")
}

func TestCoach_BadGuestLogEntrySkipsOnlyItself(t *testing.T) {
	logs := `[{"dishName":"Oats","calories":350,"protein":15,"mealType":"breakfast","createdAt":"2026-03-10T08:00:00Z"},` +
		`{"dishName":"Mystery","calories":900,"protein":60,"createdAt":""},` +
		`42]`

	t.Run("body", func(t *testing.T) {
		chat := &mockChat{reply: []byte(`{}`)}
		ts := newTestServer(t, chat, nil, 0)
		resp, _ := post(t, ts, "/api/coach", `{"message":"how am I doing?","guestLogs":`+logs+`}`, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, chat.lastPrompt(), "logged 1 meal(s), totaling about 350 kcal and 15g protein")
	})

	t.Run("header", func(t *testing.T) {
		chat := &mockChat{reply: []byte(`{}`)}
		ts := newTestServer(t, chat, nil, 0)
		resp, _ := post(t, ts, "/api/coach", `{"message":"how am I doing?"}`, map[string]string{
			HeaderGuestLogs: url.PathEscape(logs),
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, chat.lastPrompt(), "logged 1 meal(s), totaling about 350 kcal and 15g protein")
	})
}

func TestCoach_MalformedHeadersIgnored(t *testing.T) {
	chat := &mockChat{reply: []byte(`{}`)}
	ts := newTestServer(t, chat, nil, 0)

	resp, body := post(t, ts, "/api/coach", `{"message":"hi"}`, map[string]string{
		HeaderLastSearch: "%7Bnot-json",
		HeaderGuestLogs:  "%zz",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "I'm sorry, I couldn't generate a response right now.", body["reply"])
	assert.Contains(t, chat.lastPrompt(), "No recent search data.")
	assert.Contains(t, chat.lastPrompt(), "No meals logged today.")
}

func TestCoach_InvalidMessage(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, nil, 0)
	for _, b := range []string{`{}`, `{"message":42}`, `{"message":"  "}`} {
		resp, body := post(t, ts, "/api/coach", b, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, b)
		assert.NotEmpty(t, body["error"])
	}
}

func TestCoach_UsesStoredLogsForUser(t *testing.T) {
	store := sqliteStore(t)
	_, err := store.Insert(context.Background(), types.MealLog{
		UserID: "u1", DishName: "Chicken wrap", Calories: 520, Protein: 38,
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = store.Insert(context.Background(), types.MealLog{
		UserID: "u1", DishName: "Old", Calories: 999, Protein: 99,
		CreatedAt: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	chat := &mockChat{reply: []byte(`{}`)}
	ts := newTestServer(t, chat, store, 0)
	resp, _ := post(t, ts, "/api/coach", `{"message":"how am I doing?","userId":"u1"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, chat.lastPrompt(), "logged 1 meal(s), totaling about 520 kcal and 38g protein")
}

const logMealJSON = `{"userId":"u1",
	"restaurant":{"id":"b1","name":"Green Bowl","url":"https://example.com","address":"1 Market St","fitScore":88,"fitLabel":"Excellent fit"},
	"dish":{"name":"Chicken bowl","estimatedCalories":610,"estimatedProtein":42,"estimatedCarbs":50},
	"locationText":"SF"}`

func TestLogMealAndList(t *testing.T) {
	store := sqliteStore(t)
	ts := newTestServer(t, &mockChat{}, store, 0)

	resp, body := post(t, ts, "/api/log-meal", logMealJSON, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	getResp, err := ts.Client().Get(ts.URL + "/api/logs?userId=u1")
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var listed struct {
		Logs []types.MealLog `json:"logs"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&listed))
	require.Len(t, listed.Logs, 1)
	l := listed.Logs[0]
	assert.Equal(t, "Green Bowl", l.RestaurantName)
	assert.Equal(t, "Chicken bowl", l.DishName)
	assert.Equal(t, types.MealLunch, l.MealType)
	assert.Equal(t, 88, l.FitScore)
	require.NotNil(t, l.Carbs)
	assert.Equal(t, 50.0, *l.Carbs)
	assert.Nil(t, l.Fat)
	assert.Equal(t, "SF", l.LocationText)
}

func TestLogMeal_Errors(t *testing.T) {
	noStore := func(*testing.T) LogStore { return nil }
	tests := []struct {
		name   string
		store  func(*testing.T) LogStore
		body   string
		status int
	}{
		{"missing dish", noStore, `{"userId":"u1","restaurant":{"id":"b1"}}`, http.StatusBadRequest},
		{"missing user", noStore, `{"restaurant":{},"dish":{}}`, http.StatusBadRequest},
		{"no store", noStore, logMealJSON, http.StatusInternalServerError},
		{"store failure", func(*testing.T) LogStore { return failingStore{} }, logMealJSON, http.StatusInternalServerError},
		{"bad meal type", func(t *testing.T) LogStore { return sqliteStore(t) },
			`{"userId":"u1","restaurant":{},"dish":{},"mealType":"brunch"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &mockChat{}, tt.store(t), 0)
			resp, body := post(t, ts, "/api/log-meal", tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestLogs_Errors(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, sqliteStore(t), 0)
	resp, err := ts.Client().Get(ts.URL + "/api/logs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	failing := newTestServer(t, &mockChat{}, failingStore{}, 0)
	resp, err = failing.Client().Get(failing.URL + "/api/logs?userId=u1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestLogs_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, sqliteStore(t), 0)
	resp, err := ts.Client().Get(ts.URL + "/api/logs?userId=nobody")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["logs"]))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &mockChat{}, nil, 0)
	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"forwarded first entry", " 203.0.113.7 , 10.0.0.1", "127.0.0.1:5000", "203.0.113.7"},
		{"remote host", "", "192.0.2.4:6123", "192.0.2.4"},
		{"remote without port", "", "pipe", "pipe"},
		{"empty forwarded entry", ",10.0.0.1", "192.0.2.4:1", "192.0.2.4"},
		{"nothing", "", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientID(r))
		})
	}
}
