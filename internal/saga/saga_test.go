package saga

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunAllStepsSucceed(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "one", Do: func(ctx context.Context) error { order = append(order, "one"); return nil }},
		{Name: "two", Do: func(ctx context.Context) error { order = append(order, "two"); return nil }},
		{Name: "three", Do: func(ctx context.Context) error { order = append(order, "three"); return nil }},
	}

	if err := Run(context.Background(), steps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(order, ","); got != "one,two,three" {
		t.Errorf("steps ran out of order: %s", got)
	}
}

func TestRunCompensatesInReverseOrder(t *testing.T) {
	var events []string
	boom := errors.New("boom")

	steps := []Step{
		{
			Name:       "first",
			Do:         func(ctx context.Context) error { events = append(events, "do-first"); return nil },
			Compensate: func(ctx context.Context) error { events = append(events, "undo-first"); return nil },
		},
		{
			Name:       "second",
			Do:         func(ctx context.Context) error { events = append(events, "do-second"); return nil },
			Compensate: func(ctx context.Context) error { events = append(events, "undo-second"); return nil },
		},
		{
			Name: "third",
			Do:   func(ctx context.Context) error { return boom },
			Compensate: func(ctx context.Context) error {
				t.Error("compensation of the failing step must not run")
				return nil
			},
		},
	}

	err := Run(context.Background(), steps)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if !strings.Contains(err.Error(), "third") {
		t.Errorf("error should name the failing step: %v", err)
	}

	want := "do-first,do-second,undo-second,undo-first"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false

	steps := []Step{
		{Name: "fails", Do: func(ctx context.Context) error { return boom }},
		{Name: "after", Do: func(ctx context.Context) error { ran = true; return nil }},
	}

	if err := Run(context.Background(), steps); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran {
		t.Error("steps after a failure must not run")
	}
}

func TestRunCompensationFailureDoesNotMaskStepError(t *testing.T) {
	boom := errors.New("step failed")
	compensated := []bool{false, false}

	steps := []Step{
		{
			Name: "a",
			Do:   func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated[0] = true
				return nil
			},
		},
		{
			Name: "b",
			Do:   func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated[1] = true
				return errors.New("cleanup failed")
			},
		},
		{Name: "c", Do: func(ctx context.Context) error { return boom }},
	}

	err := Run(context.Background(), steps)
	if !errors.Is(err, boom) {
		t.Fatalf("compensation failure masked the step error: %v", err)
	}
	if !compensated[0] || !compensated[1] {
		t.Error("a failing compensation must not stop the remaining ones")
	}
}

func TestRunCompensatesAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var compErr error = errors.New("compensation never ran")
	steps := []Step{
		{
			Name: "a",
			Do:   func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compErr = ctx.Err()
				return nil
			},
		},
		{
			Name: "b",
			Do: func(ctx context.Context) error {
				cancel()
				return ctx.Err()
			},
		},
	}

	if err := Run(ctx, steps); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if compErr != nil {
		t.Errorf("compensation saw a dead context: %v", compErr)
	}
}

func TestRunNilCompensationSkipped(t *testing.T) {
	steps := []Step{
		{Name: "no-undo", Do: func(ctx context.Context) error { return nil }},
		{Name: "fails", Do: func(ctx context.Context) error { return errors.New("x") }},
	}
	// must not panic
	if err := Run(context.Background(), steps); err == nil {
		t.Fatal("expected error")
	}
}

func TestSettleAllRunsEverything(t *testing.T) {
	boom := errors.New("one failed")

	errs := SettleAll(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return nil },
	)

	if len(errs) != 3 {
		t.Fatalf("expected 3 results, got %d", len(errs))
	}
	if errs[0] != nil || errs[2] != nil {
		t.Errorf("independent fns affected by a sibling failure: %v", errs)
	}
	if !errors.Is(errs[1], boom) {
		t.Errorf("errs[1] = %v, want %v", errs[1], boom)
	}
}

func TestSettleAllWaitsForSlowest(t *testing.T) {
	done := false

	SettleAll(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			done = true
			return nil
		},
	)

	if !done {
		t.Error("SettleAll returned before all fns settled")
	}
}

func TestSettleAllEmpty(t *testing.T) {
	if errs := SettleAll(context.Background()); len(errs) != 0 {
		t.Errorf("expected no results, got %v", errs)
	}
}
