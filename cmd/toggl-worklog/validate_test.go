package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	tg "toggl-worklog/internal/adapter/toggl"
	"toggl-worklog/internal/worklog"
)

func TestValidationStatus(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name:    "token rejected",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			want:    statusInvalidAuth,
		},
		{
			name:    "token forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
			want:    statusInvalidAuth,
		},
		{
			name:    "toggl unavailable",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			want:    statusCannotConnect,
		},
		{
			name: "workspace not in profile",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"default_workspace_id": 7654321}`))
			},
			want: statusInvalidAuth,
		},
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"default_workspace_id": 1234567}`))
			},
			want: statusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := worklog.New("0123456789abcdef", "1234567", 0,
				slog.New(slog.NewTextHandler(io.Discard, nil)),
				worklog.WithBaseURL(srv.URL),
				worklog.WithTransportOptions(tg.WithBackoff(time.Millisecond), tg.WithRateLimit(rate.Inf, 1)),
			)
			require.NoError(t, err)
			defer client.Close()

			ok, err := client.ValidateToken(context.Background())
			assert.Equal(t, tt.want, validationStatus(ok, err))
		})
	}
}

func TestValidationStatus_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := worklog.New("0123456789abcdef", "1234567", 0,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		worklog.WithBaseURL(srv.URL),
		worklog.WithTransportOptions(tg.WithRateLimit(rate.Inf, 1)),
	)
	require.NoError(t, err)
	defer client.Close()

	ok, err := client.ValidateToken(context.Background())
	assert.Equal(t, statusCannotConnect, validationStatus(ok, err))
}
