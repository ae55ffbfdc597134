package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalnine/sycobench/internal/retry"
)

var errTransient = errors.New("transient")

func fastConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  4 * time.Millisecond,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := retry.Do(context.Background(), fastConfig(), "op",
		func(error) bool { return true },
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", errTransient
			}
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "ok" {
		t.Errorf("result: got %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := retry.Do(context.Background(), fastConfig(), "op",
		func(err error) bool { return !errors.Is(err, permanent) },
		func() (string, error) {
			calls++
			return "", permanent
		})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := retry.Do(context.Background(), fastConfig(), "op",
		func(error) bool { return true },
		func() (string, error) {
			calls++
			return "", errTransient
		})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("exhaustion error should wrap last error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("calls: got %d, want 4 (1 initial + 3 retries)", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := retry.Config{MaxRetries: 5, BaseBackoff: time.Hour, MaxBackoff: time.Hour}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := retry.Do(ctx, cfg, "op",
		func(error) bool { return true },
		func() (string, error) { return "", errTransient })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := retry.DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := retry.Config{MaxRetries: -1}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative max retries")
	}
}
