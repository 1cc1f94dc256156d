// Package idgen mints snapshot event ids. An id is a prefix, the creation
// time in milliseconds as base36, and a short random tail, so ids from one
// publisher sort roughly by creation order while staying unique within a
// burst.
package idgen

import (
	"fmt"
	"strconv"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPrefix marks ids minted for snapshot envelopes.
const DefaultPrefix = "ev-"

// tailAlphabet and TailLength size the random component: five characters over
// a 36-symbol alphabet give ~60M combinations per millisecond.
const (
	tailAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	TailLength   = 5
)

// Generate returns a new id with the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new id with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	tail, err := nanoid.Generate(tailAlphabet, TailLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return prefix + stamp + "-" + tail, nil
}
