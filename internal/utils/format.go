package utils

import (
	"fmt"
	"strings"
	"whoislookup/internal/lookup"
)

const resultSeparator = "-------------"

// FormatResult renders a result as plain text: a count header followed by
// each server's raw reply, most specific server first.
func FormatResult(res *lookup.Result) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "RESULTS FOUND: %d", res.Count)
	for _, resp := range res.Responses {
		fmt.Fprintf(&b, "\r\n\r\n%s\r\nLookup results for %s from %s server:\r\n\r\n%s",
			resultSeparator, res.Target, resp.Server, resp.Body)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(&b, "\r\n\r\n%s\r\nLookup for %s from %s server failed: %s",
			resultSeparator, res.Target, f.Server, f.Error)
	}
	return b.String()
}
