// Package annotation holds the in-memory feedback attached to a diff.
//
// Overlap is a feature, not a conflict: any number of line, range, and
// file-scoped annotations may cover the same line. Lookups therefore return
// ordered lists, and update/delete require either a unique target match or
// an explicit ID — there is no "first match wins".
package annotation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bkyoung/diffnote/internal/domain"
)

// DefaultCapacity bounds the number of distinct annotations in a session.
// A range annotation is indexed once per covered line so point lookups
// succeed, but it counts as a single unit here.
const DefaultCapacity = 100

type lineKey struct {
	path string
	line int
}

// Store is the single-writer, in-memory annotation set for one session.
// Nothing survives Clear or process exit.
type Store struct {
	capacity int
	clock    func() time.Time

	entries []*domain.Annotation
	byLine  map[lineKey][]*domain.Annotation
	byFile  map[string][]*domain.Annotation // file-scoped only
}

// Option tweaks store construction.
type Option func(*Store)

// WithCapacity overrides the distinct-annotation capacity.
func WithCapacity(n int) Option {
	return func(s *Store) { s.capacity = n }
}

// WithClock overrides the CreatedAt source, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// NewStore builds an empty store with the default capacity.
func NewStore(opts ...Option) *Store {
	s := &Store{
		capacity: DefaultCapacity,
		clock:    time.Now,
		byLine:   make(map[lineKey][]*domain.Annotation),
		byFile:   make(map[string][]*domain.Annotation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates and stores a new annotation for the target, returning it
// with its assigned ID. The store is untouched on any failure.
func (s *Store) Add(target domain.AnnotationTarget, text string) (domain.Annotation, error) {
	if err := target.Validate(); err != nil {
		return domain.Annotation{}, err
	}
	if err := validateText(text); err != nil {
		return domain.Annotation{}, err
	}
	if len(s.entries) >= s.capacity {
		return domain.Annotation{}, fmt.Errorf("%w: limit is %d", domain.ErrCapacityExceeded, s.capacity)
	}

	ann := domain.NewAnnotation(target, text, s.clock())
	stored := &ann
	s.entries = append(s.entries, stored)
	s.index(stored)
	return ann, nil
}

// Get returns the annotations covering the exact post-change line, oldest
// first. Range annotations containing the line are included; file-scoped
// ones are not. An empty result is not an error.
func (s *Store) Get(path string, line int) []domain.Annotation {
	return snapshot(s.byLine[lineKey{path: path, line: line}])
}

// FileNotes returns the file-scoped annotations for the path, oldest first.
func (s *Store) FileNotes(path string) []domain.Annotation {
	return snapshot(s.byFile[path])
}

// GetForFile returns every annotation targeting the path, regardless of
// shape, oldest first.
func (s *Store) GetForFile(path string) []domain.Annotation {
	var matched []*domain.Annotation
	for _, ann := range s.entries {
		if ann.Target.Path == path {
			matched = append(matched, ann)
		}
	}
	return snapshot(matched)
}

// Has reports whether any annotation covers the exact line.
func (s *Store) Has(path string, line int) bool {
	return len(s.byLine[lineKey{path: path, line: line}]) > 0
}

// HasFileNote reports whether the path carries file-scoped feedback.
func (s *Store) HasFileNote(path string) bool {
	return len(s.byFile[path]) > 0
}

// Update replaces the text of the single annotation with this exact target.
// Fails with ErrNotFound on zero matches and ErrAmbiguous on several; use
// UpdateByID to disambiguate. CreatedAt and ID are preserved.
func (s *Store) Update(target domain.AnnotationTarget, text string) error {
	return s.update(target, "", text)
}

// UpdateByID replaces the text of the annotation with this target and ID.
func (s *Store) UpdateByID(target domain.AnnotationTarget, id, text string) error {
	return s.update(target, id, text)
}

func (s *Store) update(target domain.AnnotationTarget, id, text string) error {
	if err := validateText(text); err != nil {
		return err
	}
	match, err := s.resolve(target, id)
	if err != nil {
		return err
	}
	match.Text = text
	return nil
}

// Delete removes the single annotation with this exact target, or the one
// with the given ID when id is non-empty. A removed range annotation drops
// all of its per-line index entries atomically.
func (s *Store) Delete(target domain.AnnotationTarget, id string) error {
	match, err := s.resolve(target, id)
	if err != nil {
		return err
	}

	for i, ann := range s.entries {
		if ann == match {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.unindex(match)
	return nil
}

// Count returns the number of distinct annotations; a range counts once.
func (s *Store) Count() int {
	return len(s.entries)
}

// Clear drops every annotation.
func (s *Store) Clear() {
	s.entries = nil
	s.byLine = make(map[lineKey][]*domain.Annotation)
	s.byFile = make(map[string][]*domain.Annotation)
}

// All returns every annotation in creation order.
func (s *Store) All() []domain.Annotation {
	out := make([]domain.Annotation, 0, len(s.entries))
	for _, ann := range s.entries {
		out = append(out, *ann)
	}
	return out
}

// resolve finds exactly one annotation for the target, honoring the
// ambiguity contract.
func (s *Store) resolve(target domain.AnnotationTarget, id string) (*domain.Annotation, error) {
	var matches []*domain.Annotation
	for _, ann := range s.entries {
		if ann.Target != target {
			continue
		}
		if id != "" && ann.ID != id {
			continue
		}
		matches = append(matches, ann)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no annotation for target %+v", domain.ErrNotFound, target)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d annotations share target %+v, supply an ID", domain.ErrAmbiguous, len(matches), target)
	}
}

func (s *Store) index(ann *domain.Annotation) {
	t := ann.Target
	if t.IsFileScoped() {
		s.byFile[t.Path] = append(s.byFile[t.Path], ann)
		return
	}
	for line := t.StartLine; line <= t.EndLine; line++ {
		key := lineKey{path: t.Path, line: line}
		s.byLine[key] = append(s.byLine[key], ann)
	}
}

func (s *Store) unindex(ann *domain.Annotation) {
	t := ann.Target
	if t.IsFileScoped() {
		s.byFile[t.Path] = remove(s.byFile[t.Path], ann)
		if len(s.byFile[t.Path]) == 0 {
			delete(s.byFile, t.Path)
		}
		return
	}
	for line := t.StartLine; line <= t.EndLine; line++ {
		key := lineKey{path: t.Path, line: line}
		s.byLine[key] = remove(s.byLine[key], ann)
		if len(s.byLine[key]) == 0 {
			delete(s.byLine, key)
		}
	}
}

func remove(list []*domain.Annotation, target *domain.Annotation) []*domain.Annotation {
	for i, ann := range list {
		if ann == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// snapshot copies entries oldest-first so callers never alias store state.
func snapshot(list []*domain.Annotation) []domain.Annotation {
	out := make([]domain.Annotation, 0, len(list))
	for _, ann := range list {
		out = append(out, *ann)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: annotation text is empty", domain.ErrInvalidInput)
	}
	if len(text) > domain.MaxAnnotationText {
		return fmt.Errorf("%w: annotation text exceeds %d characters", domain.ErrInvalidInput, domain.MaxAnnotationText)
	}
	return nil
}
