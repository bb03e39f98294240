package request

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	r, err := New("hello", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.K() != 3 {
		t.Errorf("K() = %d, want 3", r.K())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		k     int
	}{
		{"empty query", "", 3},
		{"blank query", "   ", 3},
		{"zero k", "x", 0},
		{"negative k", "x", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, tt.k)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}
