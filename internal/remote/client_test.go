package remote_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bMacroni/MindClear-sub005/internal/remote"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return remote.NewClient(srv.URL, "test-token", 5*time.Second)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, "[]")
	})

	_, err := client.ListTasks(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "[]")
	})

	_, err := client.ListTasks(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientErrorMapping(t *testing.T) {
	t.Run("404 maps to NotFoundError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.DeleteTask(context.Background(), "t1")
		require.Error(t, err)
		assert.True(t, remote.IsNotFound(err))
	})

	t.Run("422 maps to ValidationError with server message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"error":"validation_failed","message":"title too long"}`)
		})

		err := client.CreateTask(context.Background(), remote.Task{ID: "t1", Title: "x"})
		require.Error(t, err)
		assert.True(t, remote.IsValidation(err))
		assert.Contains(t, err.Error(), "title too long")
	})

	t.Run("500 maps to NetworkError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := client.UpdateTask(context.Background(), remote.Task{ID: "t1", Title: "x"})
		require.Error(t, err)
		assert.True(t, remote.IsNetwork(err))
	})

	t.Run("unreachable server maps to NetworkError", func(t *testing.T) {
		client := remote.NewClient("http://127.0.0.1:1", "test-token", time.Second)

		err := client.DeleteGoal(context.Background(), "g1")
		require.Error(t, err)
		assert.True(t, remote.IsNetwork(err))
	})
}

func TestClientSendsWatermarkParam(t *testing.T) {
	var gotSince string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("updatedSince")
		fmt.Fprint(w, "[]")
	})

	since := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	_, err := client.ListGoals(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, since.Format(time.RFC3339Nano), gotSince)

	_, err = client.ListGoals(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, gotSince, "zero watermark omits the parameter")
}
