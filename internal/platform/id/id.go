// Package id generates identifiers for persisted records.
//
// Identifiers are UUIDv4 values rendered as lowercase unpadded base32. The
// encoding keeps ids URL- and filename-safe while staying shorter than the
// canonical hyphenated form.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a fresh 26-character identifier.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}
