// Package ids generates requirement identifiers.
package ids

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// alphabet excludes lookalike characters so IDs survive being read over the
// phone and typed back in.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewRequestID generates a request ID in format RFH-{year}-{nanoid(8)}.
func NewRequestID() (string, error) {
	id, err := gonanoid.Generate(alphabet, 8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RFH-%d-%s", time.Now().Year(), id), nil
}
