package storage

import (
	"context"
	"fmt"
	"strings"
	"whoislookup/internal/lookup"
	"whoislookup/internal/model"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// GetHistoryWithDiffs returns the history of item together with a diff for
// every pair of consecutive entries, newest pair first.
func (s *Storage) GetHistoryWithDiffs(ctx context.Context, item string) ([]model.HistoryEntry, []model.HistoryDiff, error) {
	entries, err := s.GetHistory(ctx, item)
	if err != nil {
		return nil, nil, err
	}
	return entries, DiffEntries(entries), nil
}

func DiffEntries(entries []model.HistoryEntry) []model.HistoryDiff {
	var diffs []model.HistoryDiff
	for i := 0; i+1 < len(entries); i++ {
		newer, older := entries[i], entries[i+1]
		diffs = append(diffs, model.HistoryDiff{
			From: older.Timestamp,
			To:   newer.Timestamp,
			Diff: unifiedDiff(older.Timestamp, newer.Timestamp, resultText(older.Result), resultText(newer.Result)),
		})
	}
	return diffs
}

func unifiedDiff(fromName, toName, from, to string) string {
	edits := myers.ComputeEdits(span.URIFromPath(fromName), from, to)
	return fmt.Sprint(gotextdiff.ToUnified(fromName, toName, from, edits))
}

func resultText(res *lookup.Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	for _, resp := range res.Responses {
		fmt.Fprintf(&b, "%% %s\n", resp.Server)
		body := strings.ReplaceAll(resp.Body, "\r\n", "\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
