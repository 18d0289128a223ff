// Package diff parses unified-diff text into a line-addressable model.
//
// The parser never fails: hunks whose header or body cannot be reconciled
// are preserved verbatim as malformed hunks and parsing continues with the
// next hunk or file. Policy decisions (file caps, generated-file filtering)
// belong to callers, not here.
package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/diffnote/internal/domain"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse consumes a UTF-8 unified-diff stream and produces a DiffSummary.
// Empty input yields an empty summary. Re-encountering a path merges hunks
// and counts into the existing entry, preserving first-appearance order.
func Parse(input string) domain.DiffSummary {
	p := &parser{byPath: make(map[string]int)}

	for _, line := range strings.Split(input, "\n") {
		p.consume(line)
	}
	p.closeFile()

	summary := domain.DiffSummary{}
	for _, f := range p.files {
		summary.Files = append(summary.Files, *f)
	}
	return summary
}

// parser holds the state machine walking the diff stream line by line.
type parser struct {
	files  []*domain.FileEntry
	byPath map[string]int

	// pending file headers, materialized at the first hunk or binary marker
	filePath    string
	fileOldPath string
	fileBinary  bool
	fileStarted bool

	current *domain.FileEntry
	hunk    *openHunk
}

// openHunk tracks an in-progress hunk body against its header counts.
type openHunk struct {
	hunk        domain.Hunk
	raw         []string
	expectedOld int
	expectedNew int
	seenOld     int
	seenNew     int
	added       int
	removed     int
	malformed   bool
}

func (p *parser) consume(line string) {
	if p.hunk != nil && p.hunk.malformed {
		// Everything up to the next hunk or file header belongs to the
		// malformed block verbatim.
		if !strings.HasPrefix(line, "@@") && !strings.HasPrefix(line, "diff --git ") {
			p.hunk.raw = append(p.hunk.raw, line)
			return
		}
		p.closeHunk()
	}

	switch {
	case strings.HasPrefix(line, "diff --git "):
		p.closeFile()
		p.fileStarted = true
		p.filePath = pathFromGitHeader(line)
		return

	case strings.HasPrefix(line, "@@"):
		p.closeHunk()
		p.openHunkHeader(line)
		return
	}

	if p.hunk != nil {
		p.consumeBody(line)
		return
	}

	switch {
	case strings.HasPrefix(line, "--- "):
		if !p.fileStarted {
			p.closeFile()
			p.fileStarted = true
		}
		p.fileOldPath = stripPathPrefix(line[4:], "a/")

	case strings.HasPrefix(line, "+++ "):
		if !p.fileStarted {
			p.closeFile()
			p.fileStarted = true
		}
		if target := stripPathPrefix(line[4:], "b/"); target != "/dev/null" {
			p.filePath = target
		} else if p.fileOldPath != "" && p.fileOldPath != "/dev/null" {
			p.filePath = p.fileOldPath
		}

	case isBinaryMarker(line):
		p.fileBinary = true
		p.materializeFile()
	}
	// index lines, mode lines, "\ No newline" markers and stray text
	// between files carry nothing the model needs.
}

// openHunkHeader starts a new hunk from an @@ line. A header that does not
// match the expected pattern opens a malformed hunk instead of failing.
func (p *parser) openHunkHeader(line string) {
	p.materializeFile()
	if p.current == nil {
		// A hunk with no owning file header has nowhere to live; treat the
		// stream position itself as an anonymous malformed block owner.
		p.fileStarted = true
		p.materializeFile()
	}

	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		p.hunk = &openHunk{malformed: true, raw: []string{line}}
		return
	}

	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	oldCount := countOrDefault(m[2])
	newCount := countOrDefault(m[4])

	p.hunk = &openHunk{
		hunk:        domain.Hunk{OldStart: oldStart, NewStart: newStart},
		raw:         []string{line},
		expectedOld: oldCount,
		expectedNew: newCount,
	}
}

// consumeBody classifies one body line of the open well-formed hunk.
func (p *parser) consumeBody(line string) {
	h := p.hunk

	if strings.HasPrefix(line, `\ `) {
		// "\ No newline at end of file" is metadata, not a body line.
		h.raw = append(h.raw, line)
		return
	}

	var kind domain.LineKind
	var content string
	switch {
	case line == "":
		// Some producers emit blank context lines without the leading
		// space; reconcile them as empty context.
		kind, content = domain.LineContext, ""
	case line[0] == '+':
		kind, content = domain.LineAdded, line[1:]
	case line[0] == '-':
		kind, content = domain.LineRemoved, line[1:]
	case line[0] == ' ':
		kind, content = domain.LineContext, line[1:]
	default:
		h.malformed = true
		h.raw = append(h.raw, line)
		return
	}

	h.raw = append(h.raw, line)

	// A line that would overshoot either header count means the body
	// cannot be reconciled against the header.
	switch kind {
	case domain.LineAdded:
		if h.seenNew >= h.expectedNew {
			h.malformed = true
			return
		}
		h.seenNew++
		h.added++
	case domain.LineRemoved:
		if h.seenOld >= h.expectedOld {
			h.malformed = true
			return
		}
		h.seenOld++
		h.removed++
	default:
		if h.seenOld >= h.expectedOld || h.seenNew >= h.expectedNew {
			h.malformed = true
			return
		}
		h.seenOld++
		h.seenNew++
	}

	h.hunk.Lines = append(h.hunk.Lines, domain.DiffLine{Kind: kind, Content: content})

	if h.seenOld >= h.expectedOld && h.seenNew >= h.expectedNew {
		p.closeHunk()
	}
}

// closeHunk finalizes the open hunk, if any. A body that never satisfied
// its header counts is preserved as malformed rather than guessed at.
func (p *parser) closeHunk() {
	h := p.hunk
	if h == nil {
		return
	}
	p.hunk = nil

	if !h.malformed && (h.seenOld < h.expectedOld || h.seenNew < h.expectedNew) {
		h.malformed = true
	}

	if h.malformed {
		p.current.Hunks = append(p.current.Hunks, domain.Hunk{
			OldStart:  h.hunk.OldStart,
			NewStart:  h.hunk.NewStart,
			Malformed: true,
			RawText:   strings.Join(h.raw, "\n"),
		})
		return
	}

	p.current.Hunks = append(p.current.Hunks, h.hunk)
	p.current.AddedCount += h.added
	p.current.RemovedCount += h.removed
}

// materializeFile turns the pending headers into a FileEntry, merging with
// an earlier entry for the same path.
func (p *parser) materializeFile() {
	if !p.fileStarted {
		// A binary marker with no owning file header has nothing to mark;
		// the flag must not leak onto the next file.
		p.fileBinary = false
		return
	}
	p.fileStarted = false

	path := p.filePath
	p.filePath = ""
	p.fileOldPath = ""

	if idx, ok := p.byPath[path]; ok {
		p.current = p.files[idx]
	} else {
		p.current = &domain.FileEntry{Path: path}
		p.byPath[path] = len(p.files)
		p.files = append(p.files, p.current)
	}
	if p.fileBinary {
		p.current.IsBinary = true
	}
	p.fileBinary = false
}

func (p *parser) closeFile() {
	p.closeHunk()
	p.materializeFile()
	p.current = nil
}

func countOrDefault(s string) int {
	if s == "" {
		return 1
	}
	n, _ := strconv.Atoi(s)
	return n
}

// pathFromGitHeader extracts the b-side path from a "diff --git a/X b/Y"
// line. Paths with spaces stay intact because the b-side is located by the
// " b/" separator rather than field splitting.
func pathFromGitHeader(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	if idx := strings.Index(rest, " b/"); idx >= 0 {
		return rest[idx+len(" b/"):]
	}
	// Fall back to the last field for prefix-less producers.
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// stripPathPrefix drops the a/ or b/ header prefix and any trailing
// timestamp tab some diff producers append.
func stripPathPrefix(s, prefix string) string {
	if idx := strings.IndexByte(s, '\t'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimPrefix(s, prefix)
}

// isBinaryMarker recognizes the diff's own binary declarations.
func isBinaryMarker(line string) bool {
	return (strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ")) ||
		line == "GIT binary patch"
}
