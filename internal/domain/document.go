package domain

// FileReview groups the annotations attached to one file, in the order
// they were added.
type FileReview struct {
	Path        string
	Annotations []Annotation
}

// Document carries everything the serializer needs to render an export:
// the per-file annotation groups, the parsed entries to extract context
// from, and opaque repository metadata supplied by the caller. Files may
// be nil when no diff model is available; every annotation still
// serializes, just without its context block.
type Document struct {
	Branch   string
	Revision string
	Files    map[string]FileEntry
	Reviews  []FileReview
}

// AnnotationCount returns the number of annotations across all reviews.
func (d Document) AnnotationCount() int {
	n := 0
	for _, r := range d.Reviews {
		n += len(r.Annotations)
	}
	return n
}
