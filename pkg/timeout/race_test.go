package timeout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRaceFastCallWins(t *testing.T) {
	got, err := Race(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Fatalf("got %q, want %q", got, "done")
	}
}

func TestRacePropagatesCallError(t *testing.T) {
	want := errors.New("boom")
	_, err := Race(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestRaceDeadlineWins(t *testing.T) {
	got, err := Race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		select {
		case <-time.After(5 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	if !errors.Is(err, ErrElapsed) {
		t.Fatalf("err = %v, want ErrElapsed", err)
	}
	if got != "" {
		t.Fatalf("zero value expected, got %q", got)
	}
}

func TestRaceCancelsLoser(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := Race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	if !errors.Is(err, ErrElapsed) {
		t.Fatalf("err = %v, want ErrElapsed", err)
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("loser was never cancelled")
	}
}

func TestRaceHonorsParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Race(ctx, time.Minute, func(cc context.Context) (int, error) {
		<-cc.Done()
		return 0, cc.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
