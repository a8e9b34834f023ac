package common

import (
	"context"
	"errors"
	"testing"
)

func TestGatherSliceOrderAndIsolation(t *testing.T) {
	boom := errors.New("boom")
	tasks := []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { return 10, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) { return 30, nil },
	}

	results := GatherSlice(context.Background(), tasks)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Value != 10 || results[0].Err != nil {
		t.Errorf("results[0] = %+v, want value 10", results[0])
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("results[1].Err = %v, want boom", results[1].Err)
	}
	if results[2].Value != 30 || results[2].Err != nil {
		t.Errorf("results[2] = %+v, want value 30", results[2])
	}
}

func TestGatherSlicePanicIsolation(t *testing.T) {
	tasks := []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) { panic("unexpected provider shape") },
		func(ctx context.Context) (string, error) { return "ok", nil },
	}

	results := GatherSlice(context.Background(), tasks)

	if results[0].Err == nil {
		t.Error("expected panic converted to error in slot 0")
	}
	if results[1].Value != "ok" {
		t.Errorf("results[1].Value = %q, want %q", results[1].Value, "ok")
	}
}

func TestGatherMapErrorMarkers(t *testing.T) {
	tasks := map[string]func(context.Context) (any, error){
		"topics":   func(ctx context.Context) (any, error) { return []string{"stocks"}, nil },
		"news":     func(ctx context.Context) (any, error) { return nil, errors.New("provider down") },
		"glossary": func(ctx context.Context) (any, error) { panic("nil pointer") },
	}

	results := GatherMap(context.Background(), tasks)

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results["topics"].Err != nil {
		t.Errorf("topics failed: %v", results["topics"].Err)
	}
	if results["news"].Err == nil {
		t.Error("expected error marker for news slot")
	}
	if results["glossary"].Err == nil {
		t.Error("expected panic converted to error for glossary slot")
	}
}

func TestGatherSliceEmpty(t *testing.T) {
	results := GatherSlice[int](context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
