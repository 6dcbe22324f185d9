package metrics

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/torosent/sortbench/internal/supplier"
)

func TestFriendlyErrorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Unknown error"},
		{"*csv.ParseError", "CSV parse error"},
		{"*fs.PathError", "File error"},
		{"*errors.errorString", "Error"},
		{"*context.deadlineExceededError", "Context deadline exceeded"},
		{"*example.com/pkg/store.TimeoutError", "Timeout Error (store)"},
		{"main.badCSVRecord", "Bad CSV Record"},
	}
	for _, tt := range tests {
		if got := FriendlyErrorName(tt.in); got != tt.want {
			t.Errorf("FriendlyErrorName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fault", fmt.Errorf("%w at call 1", supplier.ErrInjectedFault), "Injected fault"},
		{"after failure wins over cause", fmt.Errorf("%w: %w", supplier.ErrCallAfterFailure, supplier.ErrInjectedFault), "Call after failure"},
		{"after eos", supplier.ErrCallAfterEOS, "Call after end of stream"},
		{"canceled", fmt.Errorf("wait: %w", context.Canceled), "Context canceled"},
		{"csv", fmt.Errorf("read: %w", &csv.ParseError{Line: 1, Err: csv.ErrFieldCount}), "CSV parse error"},
		{"path", statErr, "File error"},
		{"plain", errors.New("x"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortedErrors(t *testing.T) {
	if SortedErrors(nil) != nil {
		t.Fatal("expected nil for empty map")
	}
	rows := SortedErrors(map[string]int{"b": 2, "a": 2, "c": 5})
	want := []ErrorCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}
