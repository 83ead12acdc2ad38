package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeUntilDoneWaitsForInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		io.WriteString(w, "done")
		close(finished)
	})
	server := &http.Server{Handler: mux}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- serveUntilDone(ctx, server, ln, 5*time.Second) }()

	type response struct {
		status int
		body   string
		err    error
	}
	resp := make(chan response, 1)
	go func() {
		r, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			resp <- response{err: err}
			return
		}
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		resp <- response{status: r.StatusCode, body: string(body)}
	}()

	<-started
	cancel()

	select {
	case err := <-result:
		t.Fatalf("returned while a request was in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("did not return after the request finished")
	}

	// The handler had completed by the time serveUntilDone returned.
	select {
	case <-finished:
	default:
		t.Fatal("handler still running after return")
	}

	r := <-resp
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "done", r.body)
}

func TestServeUntilDoneReportsServeError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = serveUntilDone(context.Background(), &http.Server{Handler: http.NewServeMux()}, ln, time.Second)
	require.Error(t, err)
}
