package llm

import (
	"context"
	"net"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ErrMissingAPIKey is returned when a provider is built without credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// Kind classifies provider failures for the chat endpoint.
type Kind int

const (
	KindGeneric Kind = iota
	KindNetwork
	KindTimeout
	KindCanceled
)

func (k Kind) String() (s string) {
	switch k {
	case KindNetwork:
		s = "network"
	case KindTimeout:
		s = "timeout"
	case KindCanceled:
		s = "canceled"
	default:
		s = "generic"
	}
	return s
}

// Classify maps an error to a Kind. Deadline checks come first because
// transport errors wrap the context error when a request times out.
func Classify(err error) (kind Kind) {
	if err == nil {
		return KindGeneric
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindNetwork
	}

	// *url.Error and *net.OpError both satisfy net.Error.
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	if strings.Contains(strings.ToLower(err.Error()), "network") {
		return KindNetwork
	}

	return KindGeneric
}
