package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnnotationKind is derived from the target shape.
type AnnotationKind string

const (
	KindLine  AnnotationKind = "line"
	KindRange AnnotationKind = "range"
	KindFile  AnnotationKind = "file"
)

// MaxAnnotationText is the upper bound on annotation text length.
const MaxAnnotationText = 10000

// AnnotationTarget identifies what a piece of feedback is attached to:
// a single post-change line, an inclusive line range, or a whole file.
// The zero StartLine/EndLine pair means file scope. Targets are value
// types and compare with ==.
type AnnotationTarget struct {
	Path      string
	StartLine int
	EndLine   int
}

// LineTarget builds a target for a single post-change line.
func LineTarget(path string, line int) AnnotationTarget {
	return AnnotationTarget{Path: path, StartLine: line, EndLine: line}
}

// RangeTarget builds a target for an inclusive post-change line span.
func RangeTarget(path string, start, end int) AnnotationTarget {
	return AnnotationTarget{Path: path, StartLine: start, EndLine: end}
}

// FileTarget builds a target for the whole file.
func FileTarget(path string) AnnotationTarget {
	return AnnotationTarget{Path: path}
}

// Kind reports the target shape.
func (t AnnotationTarget) Kind() AnnotationKind {
	switch {
	case t.StartLine == 0:
		return KindFile
	case t.StartLine == t.EndLine:
		return KindLine
	default:
		return KindRange
	}
}

// IsFileScoped reports whether the target covers the whole file.
func (t AnnotationTarget) IsFileScoped() bool {
	return t.StartLine == 0
}

// Covers reports whether the target includes the given post-change line.
// File-scoped targets cover no individual line.
func (t AnnotationTarget) Covers(line int) bool {
	return t.StartLine != 0 && line >= t.StartLine && line <= t.EndLine
}

// Validate rejects targets that cannot be constructed through the helpers.
func (t AnnotationTarget) Validate() error {
	if t.Path == "" {
		return fmt.Errorf("%w: target path is empty", ErrInvalidInput)
	}
	if t.StartLine < 0 || t.EndLine < 0 {
		return fmt.Errorf("%w: negative line number", ErrInvalidInput)
	}
	if t.StartLine == 0 && t.EndLine != 0 {
		return fmt.Errorf("%w: range start is unset", ErrInvalidInput)
	}
	if t.StartLine > 0 && t.EndLine < t.StartLine {
		return fmt.Errorf("%w: range end %d before start %d", ErrInvalidInput, t.EndLine, t.StartLine)
	}
	return nil
}

// Annotation is a single piece of reviewer feedback. ID and CreatedAt are
// assigned once at construction; only Text may change afterwards, through
// the store's update operations.
type Annotation struct {
	ID        string
	Text      string
	Target    AnnotationTarget
	CreatedAt time.Time
}

// NewAnnotation constructs an annotation with a fresh opaque ID.
func NewAnnotation(target AnnotationTarget, text string, now time.Time) Annotation {
	return Annotation{
		ID:        uuid.NewString(),
		Text:      text,
		Target:    target,
		CreatedAt: now,
	}
}

// Kind reports the annotation kind derived from its target.
func (a Annotation) Kind() AnnotationKind {
	return a.Target.Kind()
}
