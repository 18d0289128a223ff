// Package json renders a review session as a machine-readable document,
// mirroring the markdown export's content and omission rules.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bkyoung/diffnote/internal/domain"
	"github.com/bkyoung/diffnote/internal/segment"
)

type clock func() string

// Writer renders documents to JSON.
type Writer struct {
	now    clock
	margin int
}

// NewWriter constructs a JSON writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now, margin: segment.DefaultContextMargin}
}

// WithContextMargin overrides the excerpt margin around annotated regions.
func (w *Writer) WithContextMargin(margin int) *Writer {
	w.margin = margin
	return w
}

type document struct {
	Branch   string `json:"branch"`
	Revision string `json:"revision"`
	Files    []file `json:"files"`
}

type file struct {
	Path        string `json:"path"`
	Annotations []note `json:"annotations"`
}

type note struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	StartLine int       `json:"startLine,omitempty"`
	EndLine   int       `json:"endLine,omitempty"`
	Text      string    `json:"text"`
	Context   string    `json:"context,omitempty"`
	Stats     string    `json:"stats,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Build renders the document. Files without annotations are omitted, and
// annotations whose context cannot be recovered carry no context field.
func (w *Writer) Build(doc domain.Document) (string, error) {
	out := document{Branch: doc.Branch, Revision: doc.Revision, Files: []file{}}

	for _, review := range doc.Reviews {
		if len(review.Annotations) == 0 {
			continue
		}

		entry, haveEntry := domain.FileEntry{}, false
		if doc.Files != nil {
			entry, haveEntry = doc.Files[review.Path]
		}

		f := file{Path: review.Path}
		for _, ann := range review.Annotations {
			n := note{
				ID:        ann.ID,
				Kind:      string(ann.Kind()),
				StartLine: ann.Target.StartLine,
				EndLine:   ann.Target.EndLine,
				Text:      ann.Text,
				CreatedAt: ann.CreatedAt,
			}
			if haveEntry {
				if ann.Target.IsFileScoped() {
					n.Stats = fmt.Sprintf("%d hunks, +%d -%d lines", len(entry.Hunks), entry.AddedCount, entry.RemovedCount)
				} else if excerpt, ok := segment.Extract(entry, ann.Target, w.margin); ok {
					n.Context = excerpt
				}
			}
			f.Annotations = append(f.Annotations, n)
		}
		out.Files = append(out.Files, f)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(encoded) + "\n", nil
}

// Write persists the rendered document under dir and returns its path.
func (w *Writer) Write(ctx context.Context, doc domain.Document, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	content, err := w.Build(doc)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("review_%s_%s.json", sanitise(doc.Branch), w.now())
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
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
