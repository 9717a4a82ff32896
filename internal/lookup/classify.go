package lookup

import (
	"net/netip"
	"regexp"
	"strings"
)

type Kind int

const (
	KindInvalid Kind = iota
	KindDomain
	KindIP
)

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindIP:
		return "ip"
	default:
		return "invalid"
	}
}

var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9](-*[a-zA-Z0-9])*$`)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// Classify reports whether input is an IP literal, a syntactically valid
// domain name, or neither.
func Classify(input string) Kind {
	if IsIP(input) {
		return KindIP
	}
	if IsDomain(input) {
		return KindDomain
	}
	return KindInvalid
}

// IsIP accepts bare IPv4 and IPv6 literals. Zoned addresses are rejected.
func IsIP(input string) bool {
	addr, err := netip.ParseAddr(input)
	if err != nil {
		return false
	}
	return addr.Zone() == ""
}

func IsDomain(input string) bool {
	if len(input) < 1 || len(input) > maxDomainLength {
		return false
	}
	for _, label := range strings.Split(input, ".") {
		if len(label) < 1 || len(label) > maxLabelLength {
			return false
		}
		if !labelPattern.MatchString(label) {
			return false
		}
	}
	return true
}
