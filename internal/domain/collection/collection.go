package collection

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/colbertdb-go/internal/domain"
)

// MaxNameLength is the longest collection name accepted client-side.
const MaxNameLength = 256

// ValidateName checks that a collection name can be placed in a URL path segment.
// Uniqueness is owned by the service.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: collection name is required", domain.ErrValidation)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: collection name too long (max %d)", domain.ErrValidation, MaxNameLength)
	}
	if strings.ContainsAny(name, "/?#") {
		return fmt.Errorf("%w: collection name must not contain '/', '?' or '#'", domain.ErrValidation)
	}
	return nil
}

// Options are the recognized collection creation options.
type Options struct {
	ForceCreate bool
}
