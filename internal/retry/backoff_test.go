package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errInUse = errors.New("bind: address already in use")

func fastBind() *Backoff {
	b := BindBackoff()
	b.InitialDelay = time.Millisecond
	b.MaxDelay = 2 * time.Millisecond
	return b
}

func TestDo_BindSucceedsOncePortFrees(t *testing.T) {
	calls := 0
	err := fastBind().Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 3 {
			return errInUse
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_BindGivesUp(t *testing.T) {
	b := fastBind()
	calls := 0
	err := b.Do(context.Background(), func(int) error {
		calls++
		return errInUse
	})
	if !errors.Is(err, errInUse) {
		t.Fatalf("err = %v, want wrapped %v", err, errInUse)
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("err = %q, want attempt budget in message", err)
	}
	if calls != b.MaxAttempts {
		t.Errorf("calls = %d, want %d", calls, b.MaxAttempts)
	}
}

func TestDo_PermanentStopsAtOnce(t *testing.T) {
	bad := errors.New(`listen tcp: address 127.0.0.1:notaport: unknown port`)
	calls := 0
	err := fastBind().Do(context.Background(), func(int) error {
		calls++
		return Permanent(bad)
	})
	if err != bad {
		t.Errorf("err = %v, want the unwrapped cause", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ShutdownInterruptsWait(t *testing.T) {
	b := &Backoff{InitialDelay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := b.Do(ctx, func(int) error { return errInUse })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Do kept waiting after the context ended")
	}
}

func TestPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"marked", Permanent(errInUse), true},
		{"wrapped mark", errors.Join(Permanent(errInUse)), true},
		{"plain", errInUse, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should stay nil")
	}
}

func TestDefaultBackoff_AcceptSchedule(t *testing.T) {
	b := DefaultBackoff()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Millisecond},
		{1, 5 * time.Millisecond},
		{2, 10 * time.Millisecond},
		{3, 20 * time.Millisecond},
		{8, 640 * time.Millisecond},
		{9, time.Second},
		{1000, time.Second},
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBindBackoff_BoundedAndJittered(t *testing.T) {
	b := BindBackoff()
	if b.MaxAttempts == 0 {
		t.Fatal("bind retries must be bounded")
	}
	for i := 0; i < 50; i++ {
		d := b.Delay(1)
		if d < 75*time.Millisecond || d > 125*time.Millisecond {
			t.Fatalf("Delay(1) = %v, want 100ms ±25%%", d)
		}
	}
}

func TestZeroBackoffUsesAcceptDefaults(t *testing.T) {
	var b Backoff
	if got := b.Delay(1); got != 5*time.Millisecond {
		t.Errorf("Delay(1) = %v, want 5ms", got)
	}
	if got := b.Delay(100); got != time.Second {
		t.Errorf("Delay(100) = %v, want 1s", got)
	}
}

func TestAddJitter_FloorIsOneMillisecond(t *testing.T) {
	for i := 0; i < 50; i++ {
		if d := addJitter(time.Microsecond); d < time.Millisecond {
			t.Fatalf("addJitter = %v, want >= 1ms", d)
		}
	}
}
