package document

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

// Document is a validated document to send to the service (immutable value object).
type Document struct {
	content  string
	metadata map[string]string
}

// New validates and creates a Document for sending to the service.
// Content: non-blank. Metadata keys: non-empty.
func New(content string, metadata map[string]string) (Document, error) {
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("%w: document content is required", domain.ErrValidation)
	}
	for k := range metadata {
		if k == "" {
			return Document{}, fmt.Errorf("%w: metadata key must not be empty", domain.ErrValidation)
		}
	}
	return Document{content: content, metadata: cloneMetadata(metadata)}, nil
}

// Content returns the document text.
func (d *Document) Content() string { return d.content }

// Metadata returns the metadata mapping.
func (d *Document) Metadata() map[string]string { return d.metadata }

// ValidateIDs checks a document id list for deletion.
func ValidateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one document id must be provided", domain.ErrValidation)
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: document id %d is empty", domain.ErrValidation, i)
		}
	}
	return nil
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
