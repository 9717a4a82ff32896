package lookup

import (
	"strings"
)

// Directory maps domain suffixes to WHOIS servers and lists the servers
// consulted for IP lookups. It is never mutated after NewDirectory returns.
type Directory struct {
	tld map[string]string
	ip  []string
}

func NewDirectory(tld map[string]string, ip []string) (*Directory, error) {
	if len(tld) == 0 || len(ip) == 0 {
		return nil, ErrEmptyDirectory
	}

	d := &Directory{
		tld: make(map[string]string, len(tld)),
		ip:  make([]string, 0, len(ip)),
	}
	for suffix, server := range tld {
		suffix = strings.Trim(strings.ToLower(strings.TrimSpace(suffix)), ".")
		server = strings.TrimSpace(server)
		if suffix == "" || server == "" {
			continue
		}
		d.tld[suffix] = server
	}
	for _, server := range ip {
		if server = strings.TrimSpace(server); server != "" {
			d.ip = append(d.ip, server)
		}
	}

	if len(d.tld) == 0 || len(d.ip) == 0 {
		return nil, ErrEmptyDirectory
	}
	return d, nil
}

// Server returns the WHOIS server registered for an exact suffix.
func (d *Directory) Server(suffix string) (string, bool) {
	server, ok := d.tld[suffix]
	return server, ok
}

// IPServers returns the configured IP servers in order.
func (d *Directory) IPServers() []string {
	out := make([]string, len(d.ip))
	copy(out, d.ip)
	return out
}

func (d *Directory) Len() (tld, ip int) {
	return len(d.tld), len(d.ip)
}
