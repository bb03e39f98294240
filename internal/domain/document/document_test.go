package document

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	md := map[string]string{"source": "u1"}

	doc, err := New("hello world", md)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Content() != "hello world" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if doc.Metadata()["source"] != "u1" {
		t.Errorf("Metadata() = %v", doc.Metadata())
	}
}

func TestNew_NilMetadata(t *testing.T) {
	doc, err := New("content", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Metadata() != nil {
		t.Errorf("Metadata() = %v, want nil", doc.Metadata())
	}
}

func TestNew_ClonesMetadata(t *testing.T) {
	md := map[string]string{"k": "v"}
	doc, _ := New("content", md)

	md["k"] = "mutated"

	if doc.Metadata()["k"] != "v" {
		t.Error("metadata mutation leaked into document")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		metadata map[string]string
	}{
		{"empty content", "", nil},
		{"blank content", "  \n\t", nil},
		{"empty metadata key", "ok", map[string]string{"": "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.content, tt.metadata)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestValidateIDs(t *testing.T) {
	if err := ValidateIDs([]string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateIDs(nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("nil ids: err = %v, want ErrValidation", err)
	}
	if err := ValidateIDs([]string{"a", " "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank id: err = %v, want ErrValidation", err)
	}
}
