// Package session ties the parsed diff, the annotation store, and the
// export path together behind the surface the interactive layer calls.
package session

import (
	"context"

	"github.com/bkyoung/diffnote/internal/annotation"
	"github.com/bkyoung/diffnote/internal/diff"
	"github.com/bkyoung/diffnote/internal/domain"
)

// Logger is the minimal logging dependency the session needs.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) LogInfo(context.Context, string, map[string]interface{}) {}
func (nopLogger) LogWarning(context.Context, string, map[string]interface{}) {}

// Session is one reviewer sitting in front of one parsed diff. It is
// single-writer by design; nothing here is safe for concurrent use and
// nothing needs to be.
type Session struct {
	summary domain.DiffSummary
	notes   *annotation.Store
	logger  Logger
}

// Option tweaks session construction.
type Option func(*Session)

// WithLogger attaches a logger.
func WithLogger(logger Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithStoreOptions forwards options to the annotation store.
func WithStoreOptions(opts ...annotation.Option) Option {
	return func(s *Session) { s.notes = annotation.NewStore(opts...) }
}

// New parses the diff text and opens a session over it.
func New(ctx context.Context, diffText string, opts ...Option) *Session {
	s := &Session{
		notes:  annotation.NewStore(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.summary = diff.Parse(diffText)
	s.logger.LogInfo(ctx, "diff parsed", map[string]interface{}{
		"files": len(s.summary.Files),
		"empty": s.summary.IsEmpty(),
	})
	for _, f := range s.summary.Files {
		for _, h := range f.Hunks {
			if h.Malformed {
				s.logger.LogWarning(ctx, "malformed hunk preserved", map[string]interface{}{
					"path": f.Path,
				})
			}
		}
	}
	return s
}

// Summary exposes the parsed diff for the rendering layer.
func (s *Session) Summary() domain.DiffSummary {
	return s.summary
}

// Annotate adds feedback for a target.
func (s *Session) Annotate(target domain.AnnotationTarget, text string) (domain.Annotation, error) {
	return s.notes.Add(target, text)
}

// NotesAt returns the annotations covering a post-change line, oldest first.
func (s *Session) NotesAt(path string, line int) []domain.Annotation {
	return s.notes.Get(path, line)
}

// FileNotes returns the file-scoped annotations on a path.
func (s *Session) FileNotes(path string) []domain.Annotation {
	return s.notes.FileNotes(path)
}

// Update rewrites the text of the unique annotation with this target.
func (s *Session) Update(target domain.AnnotationTarget, text string) error {
	return s.notes.Update(target, text)
}

// UpdateByID rewrites the text of a specific annotation.
func (s *Session) UpdateByID(target domain.AnnotationTarget, id, text string) error {
	return s.notes.UpdateByID(target, id, text)
}

// Delete removes the unique annotation with this target, or the one with
// the given ID.
func (s *Session) Delete(target domain.AnnotationTarget, id string) error {
	return s.notes.Delete(target, id)
}

// Count returns the number of distinct annotations.
func (s *Session) Count() int {
	return s.notes.Count()
}

// Clear drops every annotation.
func (s *Session) Clear() {
	s.notes.Clear()
}

// Document assembles the export input: files in diff order first, then
// annotated paths the diff no longer knows about, each carrying its
// annotations in the order they were added.
func (s *Session) Document(branch, revision string) domain.Document {
	doc := domain.Document{
		Branch:   branch,
		Revision: revision,
		Files:    make(map[string]domain.FileEntry, len(s.summary.Files)),
	}

	seen := make(map[string]bool)
	for _, f := range s.summary.Files {
		doc.Files[f.Path] = f
		seen[f.Path] = true
		if notes := s.notes.GetForFile(f.Path); len(notes) > 0 {
			doc.Reviews = append(doc.Reviews, domain.FileReview{Path: f.Path, Annotations: notes})
		}
	}

	// Annotations can outlive their file entry when the diff is re-parsed;
	// they still export, minus context.
	for _, ann := range s.notes.All() {
		path := ann.Target.Path
		if seen[path] {
			continue
		}
		seen[path] = true
		doc.Reviews = append(doc.Reviews, domain.FileReview{Path: path, Annotations: s.notes.GetForFile(path)})
	}

	return doc
}
