package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	errorTests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrUnknownEvent", ErrUnknownEvent, "unknown event"},
		{"ErrNilEvent", ErrNilEvent, "nil event"},
		{"ErrNilOrder", ErrNilOrder, "nil order"},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("Error %s is nil", tt.name)
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("Error message for %s = %q, want %q", tt.name, tt.err.Error(), tt.msg)
			}
			wrapped := fmt.Errorf("context: %w", tt.err)
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("errors.Is failed for wrapped %s", tt.name)
			}
		})
	}
}

func TestDefaultTopN(t *testing.T) {
	if DefaultTopN != 10 {
		t.Errorf("DefaultTopN = %d, want 10", DefaultTopN)
	}
}
