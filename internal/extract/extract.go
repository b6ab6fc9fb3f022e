// Package extract finds embedded organization IDs in page content blocks.
package extract

import (
	"regexp"

	"github.com/jackzampolin/orgsync/internal/notion"
)

// orgIDPattern matches an organization ID: 32 hex characters grouped
// 8-4-4-4-12 with hyphens.
var orgIDPattern = regexp.MustCompile(`\b[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}\b`)

// OrgID scans blocks in order and returns the first organization ID found
// in the earliest block that contains one. Only rich-text-bearing block
// variants are inspected; a match split across two blocks is never found.
func OrgID(blocks []notion.Block) (string, bool) {
	for _, b := range blocks {
		text, ok := b.PlainText()
		if !ok {
			continue
		}
		if match := orgIDPattern.FindString(text); match != "" {
			return match, true
		}
	}
	return "", false
}
