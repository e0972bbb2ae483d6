package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_GetAndPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Auth", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(append([]byte(r.URL.Path+":"), body...))
	}))
	defer srv.Close()

	client := NewHTTPClient()
	headers := http.Header{"Authorization": []string{"Bearer t"}}

	tests := []struct {
		name     string
		call     func() (int, []byte, http.Header, error)
		wantBody string
		method   string
	}{
		{
			name: "Get",
			call: func() (int, []byte, http.Header, error) {
				return client.Get(context.Background(), srv.URL+"/a", headers)
			},
			wantBody: "/a:",
			method:   http.MethodGet,
		},
		{
			name: "Post",
			call: func() (int, []byte, http.Header, error) {
				return client.Post(context.Background(), srv.URL+"/b", headers, []byte(`{"x":1}`))
			},
			wantBody: `/b:{"x":1}`,
			method:   http.MethodPost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, respHeaders, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, http.StatusAccepted, status)
			assert.Equal(t, tt.wantBody, string(body))
			assert.Equal(t, tt.method, respHeaders.Get("X-Method"))
			assert.Equal(t, "Bearer t", respHeaders.Get("X-Auth"))
		})
	}
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := NewHTTPClient().Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
