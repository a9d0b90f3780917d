package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantBody  string
		wantError bool
	}{
		{name: "collection returned", status: http.StatusOK, body: `[{"id":"1"}]`, wantBody: `[{"id":"1"}]`},
		{name: "empty array is data", status: http.StatusOK, body: `[]`, wantBody: `[]`},
		{name: "null body is empty signal", status: http.StatusOK, body: `null`},
		{name: "blank body is empty signal", status: http.StatusOK, body: ``},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/products", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL+"/", time.Second)
			body, err := c.Fetch(context.Background(), "/products")
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantBody == "" {
				assert.Nil(t, body)
			} else {
				assert.JSONEq(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestClient_FetchSharedFlightSurvivesCancel(t *testing.T) {
	arrived := make(chan struct{}, 2)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = io.WriteString(w, `[{"id":"1"}]`)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, 5*time.Second)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctxA, "/orders")
		errA <- err
	}()
	<-arrived

	type result struct {
		body []byte
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		body, err := c.Fetch(context.Background(), "/orders")
		resB <- result{body, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	close(release)

	b := <-resB
	require.NoError(t, b.err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(b.body))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 200*time.Millisecond)
	_, err := c.Fetch(context.Background(), "/orders")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_SendCarriesBearer(t *testing.T) {
	var gotAuth, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := WithBearer(context.Background(), "tok-1")
	err := c.Send(ctx, http.MethodPatch, "/orders/1/status", map[string]string{"status": "shipped"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "shipped", gotBody["status"])
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(LoginResponse{
			Token: "upstream",
			User:  LoginUser{Username: req.Username, Name: "Alice", Role: req.Role},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	resp, err := c.Login(context.Background(), LoginRequest{Role: "salesperson", Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "upstream", resp.Token)
	assert.Equal(t, "Alice", resp.User.Name)

	_, err = c.Login(context.Background(), LoginRequest{Role: "salesperson", Username: "alice", Password: "nope"})
	assert.Error(t, err)
}
