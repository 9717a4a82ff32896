package model

import "whoislookup/internal/lookup"

// HistoryEntry is one stored lookup of a target.
type HistoryEntry struct {
	Timestamp string         `json:"timestamp"`
	Result    *lookup.Result `json:"result"`
}

// HistoryDiff is the unified diff between two consecutive entries.
type HistoryDiff struct {
	From string `json:"from"`
	To   string `json:"to"`
	Diff string `json:"diff"`
}

// LookupReply is the JSON body returned by the lookup API.
type LookupReply struct {
	Result *lookup.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}
