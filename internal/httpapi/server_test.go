package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRunDrainsOnCancel(t *testing.T) {
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())

	drained := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, srv, func() { close(drained) })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	select {
	case <-drained:
	default:
		t.Error("drain was not called")
	}
}

func TestRunReturnsListenError(t *testing.T) {
	srv := &http.Server{Addr: "256.0.0.1:bad", ReadHeaderTimeout: time.Second}
	if err := Run(context.Background(), srv, nil); err == nil {
		t.Error("expected a listen error")
	}
}
