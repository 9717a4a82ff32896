package lookup

type Type string

const (
	TypeDomain Type = "domain"
	TypeIP     Type = "ip"
)

// Response is the raw text one server returned for the target.
type Response struct {
	Server string `json:"server"`
	Body   string `json:"body"`
}

// Failure records a server whose query failed while partial results were enabled.
type Failure struct {
	Server string `json:"server"`
	Error  string `json:"error"`
}

// Result is the outcome of one lookup. Responses are ordered most recently
// queried server first.
type Result struct {
	Target    string     `json:"target"`
	Type      Type       `json:"type"`
	Count     int        `json:"count"`
	Responses []Response `json:"responses"`
	Failures  []Failure  `json:"failures,omitempty"`
}

func (r *Result) Servers() []string {
	servers := make([]string, 0, len(r.Responses))
	for _, resp := range r.Responses {
		servers = append(servers, resp.Server)
	}
	return servers
}

func (r *Result) Response(server string) (string, bool) {
	for _, resp := range r.Responses {
		if resp.Server == server {
			return resp.Body, true
		}
	}
	return "", false
}

// responseSet keeps server responses keyed by hostname in insertion order.
// Storing an existing server replaces its body in place.
type responseSet struct {
	order []Response
	index map[string]int
}

func newResponseSet() *responseSet {
	return &responseSet{index: make(map[string]int)}
}

func (s *responseSet) has(server string) bool {
	_, ok := s.index[server]
	return ok
}

func (s *responseSet) put(server, body string) {
	if i, ok := s.index[server]; ok {
		s.order[i].Body = body
		return
	}
	s.index[server] = len(s.order)
	s.order = append(s.order, Response{Server: server, Body: body})
}

func (s *responseSet) len() int {
	return len(s.order)
}

func (s *responseSet) reversed() []Response {
	out := make([]Response, len(s.order))
	for i, resp := range s.order {
		out[len(s.order)-1-i] = resp
	}
	return out
}
