package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bkyoung/diffnote/internal/domain"
)

// parseNote turns a --note argument into a target and its text. Accepted
// forms, split at the first '=':
//
//	path=text             file-scoped
//	path:12=text          single line
//	path:10-15=text       inclusive range
//
// Paths may contain ':' as long as the part after the final ':' is not a
// line spec; annotations on such lines need the file form plus a re-add.
func parseNote(raw string) (domain.AnnotationTarget, string, error) {
	eq := strings.Index(raw, "=")
	if eq < 0 {
		return domain.AnnotationTarget{}, "", fmt.Errorf("note %q: missing '=' between target and text", raw)
	}
	locator, text := raw[:eq], raw[eq+1:]
	if locator == "" {
		return domain.AnnotationTarget{}, "", fmt.Errorf("note %q: empty target", raw)
	}

	colon := strings.LastIndex(locator, ":")
	if colon < 0 {
		return domain.FileTarget(locator), text, nil
	}

	path, spec := locator[:colon], locator[colon+1:]
	if start, end, ok := parseLineSpec(spec); ok {
		if path == "" {
			return domain.AnnotationTarget{}, "", fmt.Errorf("note %q: empty path", raw)
		}
		if start == end {
			return domain.LineTarget(path, start), text, nil
		}
		return domain.RangeTarget(path, start, end), text, nil
	}

	// The suffix is not a line spec, so the ':' belongs to the path.
	return domain.FileTarget(locator), text, nil
}

// parseLineSpec parses "12" or "10-15".
func parseLineSpec(spec string) (start, end int, ok bool) {
	if dash := strings.Index(spec, "-"); dash >= 0 {
		start, err1 := strconv.Atoi(spec[:dash])
		end, err2 := strconv.Atoi(spec[dash+1:])
		if err1 != nil || err2 != nil || start < 1 || end < start {
			return 0, 0, false
		}
		return start, end, true
	}

	line, err := strconv.Atoi(spec)
	if err != nil || line < 1 {
		return 0, 0, false
	}
	return line, line, true
}
