package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/usecase"
	"toggl-worklog/internal/worklog"
)

type fakeToggl struct {
	mu      sync.Mutex
	err     error
	windows []time.Time
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, from)
	if f.err != nil {
		return nil, f.err
	}
	secs := int64(5400)
	return []domain.TimeEntry{{ID: 1, Start: to.Add(9 * time.Hour), Seconds: &secs}}, nil
}

func (f *fakeToggl) HasWorkspace(ctx context.Context, workspaceID string) (bool, error) {
	return true, nil
}

func (f *fakeToggl) Close() error { return nil }

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, fakes ...*fakeToggl) *App {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := &App{log: log}
	for i, f := range fakes {
		client, err := worklog.New("token", strconv.Itoa(i+1), 1, log,
			worklog.WithTogglClient(f),
			worklog.WithClock(func() time.Time { return testNow }),
		)
		require.NoError(t, err)
		a.coordinators = append(a.coordinators, &usecase.Coordinator{Log: log, Worklog: client})
	}
	return a
}

func serve(t *testing.T, a *App, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, _ := serve(t, newTestApp(t), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSync_DefaultsToThreeMonths(t *testing.T) {
	fake := &fakeToggl{}
	rec, body := serve(t, newTestApp(t, fake), http.MethodPost, "/sync")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["months"])
	assert.Equal(t, float64(1), body["synced"])
	require.Len(t, fake.windows, 1)
	assert.Equal(t, time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC), fake.windows[0])
}

func TestSync_ExplicitMonths(t *testing.T) {
	fake := &fakeToggl{}
	rec, body := serve(t, newTestApp(t, fake), http.MethodPost, "/sync?months=12")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(12), body["months"])
	assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), fake.windows[0])
}

func TestSync_RejectsBadMonths(t *testing.T) {
	for _, q := range []string{"0", "13", "-2", "three"} {
		t.Run(q, func(t *testing.T) {
			fake := &fakeToggl{}
			rec, body := serve(t, newTestApp(t, fake), http.MethodPost, "/sync?months="+q)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "error", body["status"])
			assert.Empty(t, fake.windows)
		})
	}
}

func TestSync_CountsFailures(t *testing.T) {
	ok, bad := &fakeToggl{}, &fakeToggl{err: errors.New("down")}

	rec, body := serve(t, newTestApp(t, ok, bad), http.MethodPost, "/sync?months=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["synced"])
	assert.Equal(t, float64(1), body["failed"])

	rec, _ = serve(t, newTestApp(t, bad), http.MethodPost, "/sync")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSync_NoAccounts(t *testing.T) {
	rec, _ := serve(t, newTestApp(t), http.MethodPost, "/sync")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSync_OnlyPost(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			fake := &fakeToggl{}
			rec, _ := serve(t, newTestApp(t, fake), method, "/sync?months=1")
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Empty(t, fake.windows)
		})
	}
}

func TestSummaries_OnlyGet(t *testing.T) {
	rec, _ := serve(t, newTestApp(t, &fakeToggl{}), http.MethodPost, "/summaries")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSummaries(t *testing.T) {
	ok, bad := &fakeToggl{}, &fakeToggl{err: errors.New("down")}
	a := newTestApp(t, ok, bad)
	require.Error(t, a.RunOnce(context.Background()))

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summaries", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var views []workspaceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)

	assert.Equal(t, "1", views[0].WorkspaceID)
	require.Len(t, views[0].Sensors, len(domain.Sensors))
	day := views[0].Sensors[3]
	assert.Equal(t, string(domain.SensorCurrentDayWorkedTime), day.Sensor)
	assert.Equal(t, 1.5, day.State)
	assert.Equal(t, "h", day.Unit)
	assert.Equal(t, int64(5_400_000), day.Attributes.TotalDuration)
	assert.Equal(t, int64(30), day.Attributes.DurationMinutes)
	assert.Empty(t, views[0].LastError)

	assert.Equal(t, "2", views[1].WorkspaceID)
	assert.Empty(t, views[1].Sensors)
	assert.Nil(t, views[1].RefreshedAt)
	assert.Contains(t, views[1].LastError, "down")
	assert.NotNil(t, views[1].FailedAt)

	assert.Len(t, a.Snapshots(), 1)
}
