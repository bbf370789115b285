package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/peterxing/exo/internal/model"
)

func TestNewSourceBranchesOnPlatform(t *testing.T) {
	native := SourceFunc(func(context.Context) (*model.Metrics, error) {
		return &model.Metrics{Timestamp: "native"}, nil
	})
	generic := SourceFunc(func(context.Context) (*model.Metrics, error) {
		return &model.Metrics{Timestamp: "generic"}, nil
	})

	for platform, want := range map[string]string{
		"darwin":  "native",
		"linux":   "generic",
		"windows": "generic",
		"Darwin":  "generic",
	} {
		m, err := NewSource(platform, native, generic).Sample(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", platform, err)
		}
		if m.Timestamp != want {
			t.Errorf("%s: got %s source, want %s", platform, m.Timestamp, want)
		}
	}
}

func TestFaultMatching(t *testing.T) {
	cause := errors.New("pipe closed")
	err := fmt.Errorf("tick: %w", Fault("macmon", cause))

	if !IsFault(err) {
		t.Fatal("wrapped fault not recognised")
	}
	if !errors.Is(err, cause) {
		t.Fatal("fault should unwrap to its cause")
	}
	var fe *FaultError
	if !errors.As(err, &fe) || fe.Source != "macmon" {
		t.Fatalf("errors.As = %+v", fe)
	}
	if IsFault(cause) {
		t.Fatal("plain error reported as fault")
	}
}
