package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/worklog"
)

// HTTPServer returns a configured http.Server exposing the latest sensor
// states and the manual sync trigger.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(a.log, a.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// Handler routes /healthz, /summaries and /sync.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /summaries", func(w http.ResponseWriter, r *http.Request) {
		views := make([]workspaceView, 0, len(a.coordinators))
		for _, c := range a.coordinators {
			v := workspaceView{WorkspaceID: c.Worklog.WorkspaceID(), Sensors: []sensorView{}}
			if snap, ok := c.Snapshot(); ok {
				v.RefreshedAt = &snap.RefreshedAt
				v.Sensors = sensorViews(snap)
			}
			if at, err := c.LastFailure(); err != nil {
				v.LastError = err.Error()
				v.FailedAt = &at
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, views)
	})

	// POST /sync?months=N, N in 1..12, default 3
	mux.HandleFunc("POST /sync", func(w http.ResponseWriter, r *http.Request) {
		months := 0
		if v := r.URL.Query().Get("months"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "months must be an integer"})
				return
			}
			if n == 0 {
				n = -1 // an explicit 0 is out of range, not "default"
			}
			months = n
		}
		res, err := a.Sync(r.Context(), months)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, worklog.ErrSyncMonths) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]any{"status": "error", "error": err.Error()})
			return
		}
		status := http.StatusOK
		if res.Synced == 0 && res.Failed > 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, map[string]any{
			"status": "ok",
			"months": res.Months,
			"synced": res.Synced,
			"failed": res.Failed,
		})
	})

	return mux
}

type workspaceView struct {
	WorkspaceID string       `json:"workspace_id"`
	RefreshedAt *time.Time   `json:"refreshed_at,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	FailedAt    *time.Time   `json:"failed_at,omitempty"`
	Sensors     []sensorView `json:"sensors"`
}

type sensorView struct {
	Sensor     string           `json:"sensor"`
	Name       string           `json:"name"`
	State      float64          `json:"state"`
	Unit       string           `json:"unit_of_measurement"`
	Attributes sensorAttributes `json:"attributes"`
}

type sensorAttributes struct {
	TotalDuration   int64 `json:"total_duration"`
	DurationHours   int64 `json:"duration_hours"`
	DurationMinutes int64 `json:"duration_minutes"`
	EntriesCount    int   `json:"entries_count"`
}

func sensorViews(snap domain.Snapshot) []sensorView {
	out := make([]sensorView, 0, len(domain.Sensors))
	for _, s := range domain.Sensors {
		sum, ok := snap.Summaries[s]
		if !ok {
			continue
		}
		out = append(out, sensorView{
			Sensor: string(s),
			Name:   s.Name(),
			State:  sum.StateHours(),
			Unit:   "h",
			Attributes: sensorAttributes{
				TotalDuration:   sum.TotalDurationMillis,
				DurationHours:   sum.DurationHours,
				DurationMinutes: sum.DurationMinutes,
				EntriesCount:    sum.EntriesCount,
			},
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
