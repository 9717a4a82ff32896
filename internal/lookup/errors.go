package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTarget is returned before any network activity when the
	// target is neither an IP literal nor a valid domain name.
	ErrInvalidTarget = errors.New("target is not a valid IP address or domain name")
	// ErrNoServer is returned when no suffix of a domain has a WHOIS server.
	ErrNoServer = errors.New("no whois server found for domain")
	// ErrEmptyDirectory means the server directory is unusable.
	ErrEmptyDirectory = errors.New("whois server directory requires tld and ip servers")
)

// TransportError wraps a connect, write or read failure against one server.
type TransportError struct {
	Server string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("whois %s %s: %v", e.Op, e.Server, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
