// Package segment recovers diff excerpts for annotated regions.
//
// Targets are expressed in post-change line numbers. Removed lines have no
// post-change position of their own, so each one is anchored at the
// post-change position immediately following it: the window test for a
// removed line uses the running cursor before it advances. That single rule
// is what keeps deletions adjacent to an annotated region in the excerpt.
package segment

import (
	"strings"

	"github.com/bkyoung/diffnote/internal/domain"
)

// DefaultContextMargin is the number of post-change lines included on each
// side of the annotated region.
const DefaultContextMargin = 2

// Extract recovers the diff lines around the target, each with its original
// +/-/space marker, joined by newlines. The second return value is false
// when there is nothing to extract: file-scoped targets, targets outside
// every well-formed hunk (a stale annotation after a re-parse, an expected
// outcome), or a degenerate window producing zero lines.
func Extract(entry domain.FileEntry, target domain.AnnotationTarget, margin int) (string, bool) {
	if target.IsFileScoped() {
		return "", false
	}
	if margin < 0 {
		margin = 0
	}

	hunk, ok := locateHunk(entry, target.StartLine)
	if !ok {
		return "", false
	}

	windowStart := target.StartLine - margin
	if windowStart < hunk.NewStart {
		windowStart = hunk.NewStart
	}
	windowEnd := target.EndLine + margin

	var lines []string
	cursor := hunk.NewStart
	for _, line := range hunk.Lines {
		if line.Kind == domain.LineRemoved {
			// Anchored to the post-change position that follows it.
			if cursor >= windowStart && cursor <= windowEnd {
				lines = append(lines, "-"+line.Content)
			}
			continue
		}
		if cursor >= windowStart && cursor <= windowEnd {
			lines = append(lines, line.Kind.Marker()+line.Content)
		}
		cursor++
	}

	if len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// locateHunk finds the well-formed hunk whose post-change extent contains
// the given line. Malformed hunks have no addressable lines and are skipped.
func locateHunk(entry domain.FileEntry, line int) (domain.Hunk, bool) {
	for _, hunk := range entry.Hunks {
		if hunk.Malformed {
			continue
		}
		extent := hunk.NewExtent()
		if extent == 0 {
			continue
		}
		if line >= hunk.NewStart && line <= hunk.NewStart+extent-1 {
			return hunk, true
		}
	}
	return domain.Hunk{}, false
}
