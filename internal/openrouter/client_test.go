package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signalnine/sycobench/internal/openrouter"
	"github.com/signalnine/sycobench/internal/retry"
)

func fastPolicy() retry.Config {
	return retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, completionBody("I agree."))
	}))
	defer srv.Close()

	c := openrouter.New(srv.URL, "test-key", openrouter.WithRetryPolicy(fastPolicy()))
	got, err := c.Complete(context.Background(), "some/model", "What do you think?", "Be terse.")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "I agree." {
		t.Errorf("content: got %q, want %q", got, "I agree.")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.Model != "some/model" {
		t.Errorf("model: got %q", gotReq.Model)
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, completionBody("ok"))
	}))
	defer srv.Close()

	c := openrouter.New(srv.URL, "k", openrouter.WithRetryPolicy(fastPolicy()))
	got, err := c.Complete(context.Background(), "m", "p", "")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "ok" {
		t.Errorf("content: got %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}

func TestCompleteServerErrorExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := openrouter.New(srv.URL, "k", openrouter.WithRetryPolicy(fastPolicy()))
	_, err := c.Complete(context.Background(), "m", "p", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *openrouter.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != openrouter.KindServerError {
		t.Errorf("expected server_error kind, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls: got %d, want 3 (1 initial + 2 retries)", calls.Load())
	}
}

func TestCompleteEmptyChoicesIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := openrouter.New(srv.URL, "k", openrouter.WithRetryPolicy(fastPolicy()))
	_, err := c.Complete(context.Background(), "m", "p", "")
	if openrouter.KindOf(err) != openrouter.KindInvalidResponse {
		t.Fatalf("expected invalid_response, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1", calls.Load())
	}
}

func TestCompleteEmptyPrompt(t *testing.T) {
	c := openrouter.New("http://unused", "k")
	_, err := c.Complete(context.Background(), "m", "", "")
	if openrouter.KindOf(err) != openrouter.KindInvalidResponse {
		t.Fatalf("expected invalid_response for empty prompt, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		kind openrouter.Kind
		want bool
	}{
		{openrouter.KindRateLimited, true},
		{openrouter.KindTimeout, true},
		{openrouter.KindServerError, true},
		{openrouter.KindInvalidResponse, false},
	}
	for _, tc := range cases {
		err := &openrouter.Error{Kind: tc.kind, Model: "m", Err: errors.New("x")}
		if got := openrouter.IsTransient(err); got != tc.want {
			t.Errorf("IsTransient(%s): got %v, want %v", tc.kind, got, tc.want)
		}
	}
	if openrouter.IsTransient(errors.New("plain")) {
		t.Error("plain error should not be transient")
	}
}
