package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffnote/internal/domain"
	"github.com/bkyoung/diffnote/internal/usecase/session"
)

const sampleDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,2 +1,2 @@
 package main
-func old() {}
+func new() {}
diff --git a/util.go b/util.go
--- a/util.go
+++ b/util.go
@@ -10,2 +10,3 @@
 keep
+added
 keep too
`

func TestSessionAnnotateAndLookup(t *testing.T) {
	s := session.New(context.Background(), sampleDiff)
	require.Len(t, s.Summary().Files, 2)

	ann, err := s.Annotate(domain.LineTarget("main.go", 2), "prefer descriptive names")
	require.NoError(t, err)

	got := s.NotesAt("main.go", 2)
	require.Len(t, got, 1)
	assert.Equal(t, ann.ID, got[0].ID)
	assert.Equal(t, 1, s.Count())
}

func TestSessionDocumentOrdersFilesByDiff(t *testing.T) {
	s := session.New(context.Background(), sampleDiff)

	_, err := s.Annotate(domain.FileTarget("util.go"), "second file note")
	require.NoError(t, err)
	_, err = s.Annotate(domain.LineTarget("main.go", 2), "first file note")
	require.NoError(t, err)

	doc := s.Document("main", "abc123")
	require.Len(t, doc.Reviews, 2)
	assert.Equal(t, "main.go", doc.Reviews[0].Path, "diff order wins over annotation order")
	assert.Equal(t, "util.go", doc.Reviews[1].Path)
	assert.Equal(t, "main", doc.Branch)
	assert.Equal(t, 2, doc.AnnotationCount())
}

func TestSessionDocumentKeepsStrayAnnotations(t *testing.T) {
	s := session.New(context.Background(), sampleDiff)

	_, err := s.Annotate(domain.LineTarget("vanished.go", 7), "file no longer in diff")
	require.NoError(t, err)

	doc := s.Document("main", "abc123")
	require.Len(t, doc.Reviews, 1)
	assert.Equal(t, "vanished.go", doc.Reviews[0].Path)
	_, present := doc.Files["vanished.go"]
	assert.False(t, present)
}

func TestSessionUpdateAndDelete(t *testing.T) {
	s := session.New(context.Background(), sampleDiff)

	target := domain.RangeTarget("util.go", 10, 12)
	_, err := s.Annotate(target, "draft")
	require.NoError(t, err)

	require.NoError(t, s.Update(target, "final"))
	assert.Equal(t, "final", s.NotesAt("util.go", 11)[0].Text)

	require.NoError(t, s.Delete(target, ""))
	assert.Equal(t, 0, s.Count())
}

func TestSessionClear(t *testing.T) {
	s := session.New(context.Background(), sampleDiff)
	_, err := s.Annotate(domain.FileTarget("main.go"), "note")
	require.NoError(t, err)

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.FileNotes("main.go"))
}

func TestSessionEmptyDiff(t *testing.T) {
	s := session.New(context.Background(), "")
	assert.True(t, s.Summary().IsEmpty())

	// Annotations still work; they just export without context.
	_, err := s.Annotate(domain.LineTarget("a.go", 1), "note without a diff")
	require.NoError(t, err)
	doc := s.Document("b", "r")
	assert.Equal(t, 1, doc.AnnotationCount())
}
