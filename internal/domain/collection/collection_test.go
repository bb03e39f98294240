package collection

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

func TestValidateName_Valid(t *testing.T) {
	for _, name := range []string{"docs", "my_collection", "radar-docs-2024", "with space"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) unexpected error: %v", name, err)
		}
	}
}

func TestValidateName_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"too long", strings.Repeat("a", MaxNameLength+1)},
		{"slash", "a/b"},
		{"query", "a?b"},
		{"fragment", "a#b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateName(tt.input); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}
