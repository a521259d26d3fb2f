package context

import (
	"github.com/nrednav/cuid2"
)

// NewIDGenerator returns a function that generates random CUIDs of the given
// length. They identify long-lived requests, such as watch streams, in logs.
func NewIDGenerator(length int) (func() string, error) {
	return cuid2.Init(cuid2.WithLength(length))
}
