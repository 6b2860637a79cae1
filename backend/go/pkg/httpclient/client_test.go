package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PerguntaQueRespondo/backend/go/pkg/circuitbreaker"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["q"]})
	}))
	defer srv.Close()

	c := New(time.Second, nil)
	var out map[string]string
	err := c.PostJSON(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer k"},
		map[string]string{"q": "educação"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "educação", out["echo"])
}

func TestStatusErrorAndBreaker(t *testing.T) {
	status := http.StatusInternalServerError
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Settings{FailureThreshold: 2, Timeout: time.Minute, IsFailure: isFailure})
	c := New(time.Second, breaker)

	for i := 0; i < 2; i++ {
		err := c.PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		assert.Equal(t, "down", se.Body)
	}

	err := c.PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Settings{FailureThreshold: 1, IsFailure: isFailure})
	c := New(time.Second, breaker)
	for i := 0; i < 3; i++ {
		err := c.PostJSON(context.Background(), srv.URL, nil, nil, nil)
		var se *StatusError
		require.ErrorAs(t, err, &se)
	}
	assert.Equal(t, circuitbreaker.Closed, breaker.State())
}

func TestCanceledCallsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Settings{FailureThreshold: 1, IsFailure: isFailure})
	c := New(time.Second, breaker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		err := c.PostJSON(ctx, srv.URL, nil, map[string]string{}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, circuitbreaker.Closed, breaker.State())
}

func TestNewWithBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWithBreaker(time.Second, &circuitbreaker.Settings{Name: "upstream", FailureThreshold: 1, Timeout: time.Minute}, logger.Discard())
	require.NotNil(t, c.breaker)

	var se *StatusError
	require.ErrorAs(t, c.PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil), &se)
	assert.ErrorIs(t, c.PostJSON(context.Background(), srv.URL, nil, map[string]string{}, nil), circuitbreaker.ErrCircuitOpen)

	assert.Nil(t, NewWithBreaker(time.Second, nil, logger.Discard()).breaker)
}
