package domain

// LineKind classifies a single line inside a diff hunk.
type LineKind int

const (
	// LineContext is an unchanged line (prefixed with ' ' in the diff).
	LineContext LineKind = iota
	// LineAdded is a line introduced by the change (prefixed with '+').
	LineAdded
	// LineRemoved is a line deleted by the change (prefixed with '-').
	LineRemoved
)

// Marker returns the original unified-diff prefix character for the kind.
func (k LineKind) Marker() string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// DiffLine is a classified line within a hunk, stored without its prefix.
type DiffLine struct {
	Kind    LineKind
	Content string
}

// Hunk represents a single @@ block of a unified diff. A hunk is either
// well-formed (Lines populated) or malformed (Malformed set, RawText holding
// the original block verbatim so nothing is lost). Hunks are immutable after
// parsing.
type Hunk struct {
	OldStart  int
	NewStart  int
	Lines     []DiffLine
	Malformed bool
	RawText   string
}

// NewExtent returns the number of post-change lines the hunk covers
// (added plus context lines). Zero for malformed hunks.
func (h Hunk) NewExtent() int {
	if h.Malformed {
		return 0
	}
	n := 0
	for _, line := range h.Lines {
		if line.Kind != LineRemoved {
			n++
		}
	}
	return n
}

// FileEntry captures the change for a single file in the diff. Path keeps
// the exact bytes from the diff header; AddedCount/RemovedCount are the sums
// over all well-formed hunk lines.
type FileEntry struct {
	Path         string
	AddedCount   int
	RemovedCount int
	IsBinary     bool
	Hunks        []Hunk
}

// DiffSummary is the root of the parse output: an ordered, path-deduplicated
// collection of file entries.
type DiffSummary struct {
	Files []FileEntry
}

// IsEmpty reports whether the parse produced no file entries at all.
func (s DiffSummary) IsEmpty() bool {
	return len(s.Files) == 0
}

// FileByPath returns the entry for an exact path, if present.
func (s DiffSummary) FileByPath(path string) (FileEntry, bool) {
	for _, f := range s.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileEntry{}, false
}
