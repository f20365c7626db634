package services_test

import (
	"errors"
	"strings"
	"testing"

	"autobot/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "kernels", "push", "host rejected push", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"kernels", "push", "host rejected push"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsRunFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"schema", services.Wrap(services.ErrSchema, "syllabus", "load", "corrupt", nil), true},
		{"not found", services.Wrap(services.ErrNotFound, "resolver", "", "", nil), true},
		{"external", services.Wrap(services.ErrExternalService, "papers", "fetch", "", nil), false},
		{"plain", errors.New("disk full"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsRunFatal(tc.err); got != tc.want {
				t.Fatalf("IsRunFatal(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if got := services.Kind(services.Wrap(services.ErrDeclined, "bootstrap", "", "", nil)); got != "declined" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := services.Kind(errors.New("x")); got != "internal" {
		t.Fatalf("unexpected kind %q", got)
	}
}
