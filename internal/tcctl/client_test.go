package tcctl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: common.ErrorUnauthorized},
		{name: "not found", status: http.StatusNotFound, wantErr: common.ErrorNotFound},
		{name: "bad request carries message", status: http.StatusBadRequest,
			body: `{"error":"granularity must be hour, day or month"}`, wantMsg: "granularity must be"},
		{name: "internal", status: http.StatusInternalServerError,
			body: `{"error":"internal error"}`, wantMsg: "server returned 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			defer srv.Close()

			c := NewAPIClient(srv.URL)
			err := c.request(context.Background(), http.MethodGet, "/api/summary", nil, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRequest_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAPIClient(srv.URL)
	err := c.request(context.Background(), http.MethodGet, "/api/summary", nil, nil)
	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
}

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-42"})
			return
		}
		assert.Equal(t, "Bearer tok-42", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL)
	require.NoError(t, c.Login(context.Background(), "admin", "s3cret"))
	assert.Equal(t, "tok-42", c.token)

	_, err := c.TriggerIngest(context.Background())
	require.NoError(t, err)
}
