package refine

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	planning := NewPlanningError("overlap too large")
	if got, want := planning.Error(), "refine: planning: overlap too large"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	service := NewServiceError(3, errors.New("connection refused"))
	if got, want := service.Error(), "refine: service (chunk 3): connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	parse := NewParseError(0, "no JSON object in response", nil)
	if got, want := parse.Error(), "refine: parse (chunk 0): no JSON object in response"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewServiceError(1, cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is does not see the wrapped cause")
	}

	wrapped := fmt.Errorf("run failed: %w", err)
	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("errors.As does not find *Error through wrapping")
	}
	if e.Chunk != 1 {
		t.Errorf("Chunk = %d, want 1", e.Chunk)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name                        string
		err                         error
		planning, service, parseErr bool
		chunk                       int
	}{
		{"planning", NewPlanningError("bad policy"), true, false, false, -1},
		{"service", NewServiceError(2, errors.New("x")), false, true, false, 2},
		{"parse", NewParseError(4, "bad payload", nil), false, false, true, 4},
		{"plain", errors.New("x"), false, false, false, -1},
		{"nil", nil, false, false, false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlanning(tt.err); got != tt.planning {
				t.Errorf("IsPlanning = %v, want %v", got, tt.planning)
			}
			if got := IsService(tt.err); got != tt.service {
				t.Errorf("IsService = %v, want %v", got, tt.service)
			}
			if got := IsParse(tt.err); got != tt.parseErr {
				t.Errorf("IsParse = %v, want %v", got, tt.parseErr)
			}
			if got := FailedChunk(tt.err); got != tt.chunk {
				t.Errorf("FailedChunk = %d, want %d", got, tt.chunk)
			}
		})
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodePlanning, "planning"},
		{ErrCodeService, "service"},
		{ErrCodeParse, "parse"},
		{ErrCodeInvariant, "invariant"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}
