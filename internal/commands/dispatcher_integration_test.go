package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type dispatchedInvalidation struct {
	Locale string
}

func (dispatchedInvalidation) Type() string { return "localization.test.dispatch" }

func (dispatchedInvalidation) Validate() error { return nil }

func TestDispatcherRetriesUntilSuccess(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ dispatchedInvalidation) error {
		attempts++
		if attempts == 1 {
			return errors.New("redis connection reset")
		}
		return nil
	}, WithTimeout[dispatchedInvalidation](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), dispatchedInvalidation{Locale: "fr"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}
