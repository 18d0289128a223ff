// Package markdown renders a review session into the portable export
// document. The format is stable where machines care: context excerpts are
// fenced blocks tagged "diff" whose lines carry only the original marker
// character, and file-scoped annotations render the exact statistics line
// "<n> hunks, +<a> -<r> lines".
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/diffnote/internal/domain"
	"github.com/bkyoung/diffnote/internal/segment"
)

type clock func() string

// Writer renders documents and persists them to disk.
type Writer struct {
	now    clock
	margin int
}

// NewWriter constructs a writer with a timestamp supplier for filenames.
func NewWriter(now clock) *Writer {
	return &Writer{now: now, margin: segment.DefaultContextMargin}
}

// WithContextMargin overrides the excerpt margin around annotated regions.
func (w *Writer) WithContextMargin(margin int) *Writer {
	w.margin = margin
	return w
}

// Write persists the rendered document under dir and returns its path.
func (w *Writer) Write(ctx context.Context, doc domain.Document, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("review_%s_%s.md", sanitise(doc.Branch), w.now())
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(w.Build(doc)), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

// Build composes the full export text. Files without annotations are
// omitted; annotations within a file appear in the order they were added.
// Branch and revision are opaque strings supplied by the caller and are
// embedded without inspection.
func (w *Writer) Build(doc domain.Document) string {
	var b strings.Builder
	caser := cases.Title(language.English)

	b.WriteString("# Review Notes\n\n")
	b.WriteString(fmt.Sprintf("- Branch: %s\n", doc.Branch))
	b.WriteString(fmt.Sprintf("- Revision: %s\n\n", doc.Revision))

	for _, review := range doc.Reviews {
		if len(review.Annotations) == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("## %s\n\n", review.Path))

		entry, haveEntry := domain.FileEntry{}, false
		if doc.Files != nil {
			entry, haveEntry = doc.Files[review.Path]
		}

		for _, ann := range review.Annotations {
			b.WriteString(annotationHeading(caser, ann))
			b.WriteString("\n\n")
			b.WriteString(ann.Text)
			b.WriteString("\n\n")

			if !haveEntry {
				// No diff model: the annotation stands alone, context
				// silently omitted so the document stays valid.
				continue
			}

			if ann.Target.IsFileScoped() {
				b.WriteString(statsLine(entry))
				b.WriteString("\n\n")
				continue
			}

			if excerpt, ok := segment.Extract(entry, ann.Target, w.margin); ok {
				b.WriteString("```diff\n")
				b.WriteString(excerpt)
				b.WriteString("\n```\n\n")
			}
		}
	}

	return b.String()
}

func annotationHeading(caser cases.Caser, ann domain.Annotation) string {
	kind := caser.String(string(ann.Kind()))
	switch ann.Kind() {
	case domain.KindLine:
		return fmt.Sprintf("### %s %d", kind, ann.Target.StartLine)
	case domain.KindRange:
		return fmt.Sprintf("### %s %d-%d", kind, ann.Target.StartLine, ann.Target.EndLine)
	default:
		return fmt.Sprintf("### %s", kind)
	}
}

// statsLine is the file-scoped substitute for a context excerpt.
func statsLine(entry domain.FileEntry) string {
	return fmt.Sprintf("%d hunks, +%d -%d lines", len(entry.Hunks), entry.AddedCount, entry.RemovedCount)
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
