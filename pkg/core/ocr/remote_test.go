package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fakeService(t *testing.T, polls *atomic.Int32, finalStatus, text string, settleAfter int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"job_id": "job-1"}`)
	})
	mux.HandleFunc("GET /jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < settleAfter {
			fmt.Fprint(w, `{"status": "IN_PROGRESS"}`)
			return
		}
		fmt.Fprintf(w, `{"status": %q, "text": %q, "error": "boom"}`, finalStatus, text)
	})
	return httptest.NewServer(mux)
}

func testClient(baseURL string) *RemoteClient {
	c := NewRemoteClient(baseURL)
	c.PollInterval = time.Millisecond
	c.MaxWait = 100 * time.Millisecond
	return c
}

func TestRemoteClientSucceedsAfterPolling(t *testing.T) {
	var polls atomic.Int32
	srv := fakeService(t, &polls, "SUCCEEDED", "extracted text", 3)
	defer srv.Close()

	got, err := testClient(srv.URL).ExtractText(context.Background(), []byte("%PDF-"))
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if got != "extracted text" {
		t.Errorf("text = %q", got)
	}
	if polls.Load() < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls.Load())
	}
}

func TestRemoteClientJobFailure(t *testing.T) {
	var polls atomic.Int32
	srv := fakeService(t, &polls, "FAILED", "", 1)
	defer srv.Close()

	_, err := testClient(srv.URL).ExtractText(context.Background(), []byte("%PDF-"))
	if !errors.Is(err, ErrJobFailed) {
		t.Errorf("want ErrJobFailed, got %v", err)
	}
}

func TestRemoteClientTimesOut(t *testing.T) {
	var polls atomic.Int32
	// Never settles within the budget.
	srv := fakeService(t, &polls, "SUCCEEDED", "late", 1<<30)
	defer srv.Close()

	c := testClient(srv.URL)
	c.MaxWait = 10 * time.Millisecond
	_, err := c.ExtractText(context.Background(), []byte("%PDF-"))
	if !errors.Is(err, ErrTimedOut) {
		t.Errorf("want ErrTimedOut, got %v", err)
	}
}

func TestRemoteClientUnreachable(t *testing.T) {
	c := testClient("http://127.0.0.1:1")
	_, err := c.ExtractText(context.Background(), []byte("%PDF-"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got %v", err)
	}
}

func TestRemoteClientContextCancel(t *testing.T) {
	var polls atomic.Int32
	srv := fakeService(t, &polls, "SUCCEEDED", "late", 1<<30)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := testClient(srv.URL)
	c.PollInterval = time.Hour
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := c.ExtractText(ctx, []byte("%PDF-"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}
