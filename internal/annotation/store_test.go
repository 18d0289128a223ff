package annotation_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffnote/internal/annotation"
	"github.com/bkyoung/diffnote/internal/domain"
)

// tickingClock returns a clock advancing one second per call so ordering
// by CreatedAt is observable in tests.
func tickingClock() func() time.Time {
	t := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newStore(opts ...annotation.Option) *annotation.Store {
	opts = append([]annotation.Option{annotation.WithClock(tickingClock())}, opts...)
	return annotation.NewStore(opts...)
}

func TestAddThenGetByExactTarget(t *testing.T) {
	s := newStore()

	ann, err := s.Add(domain.LineTarget("a.go", 12), "rename this")
	require.NoError(t, err)
	require.NotEmpty(t, ann.ID)

	got := s.Get("a.go", 12)
	require.Len(t, got, 1)
	assert.Equal(t, ann.ID, got[0].ID)
	assert.Equal(t, "rename this", got[0].Text)
	assert.True(t, s.Has("a.go", 12))
	assert.False(t, s.Has("a.go", 13))
}

func TestAddRejectsEmptyText(t *testing.T) {
	s := newStore()

	_, err := s.Add(domain.LineTarget("a.go", 1), "   \n\t ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, s.Count())
}

func TestAddRejectsOversizedText(t *testing.T) {
	s := newStore()

	_, err := s.Add(domain.LineTarget("a.go", 1), strings.Repeat("x", domain.MaxAnnotationText+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCapacityBoundsDistinctAnnotations(t *testing.T) {
	s := newStore()

	for i := 1; i <= annotation.DefaultCapacity; i++ {
		_, err := s.Add(domain.LineTarget("a.go", i), fmt.Sprintf("note %d", i))
		require.NoError(t, err, "annotation %d", i)
	}
	require.Equal(t, annotation.DefaultCapacity, s.Count())

	_, err := s.Add(domain.LineTarget("a.go", 9999), "one too many")
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, annotation.DefaultCapacity, s.Count(), "failed add must leave the store unchanged")
}

func TestRangeIndexesPerLineButCountsOnce(t *testing.T) {
	s := newStore()

	ann, err := s.Add(domain.RangeTarget("a.go", 10, 15), "whole block is stale")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())

	for line := 10; line <= 15; line++ {
		got := s.Get("a.go", line)
		require.Len(t, got, 1, "line %d", line)
		assert.Equal(t, ann.ID, got[0].ID)
	}
	assert.Empty(t, s.Get("a.go", 9))
	assert.Empty(t, s.Get("a.go", 16))
}

func TestOverlappingAnnotationsCoexistOrderedOldestFirst(t *testing.T) {
	s := newStore()

	first, err := s.Add(domain.RangeTarget("a.go", 5, 9), "range note")
	require.NoError(t, err)
	second, err := s.Add(domain.LineTarget("a.go", 7), "line note")
	require.NoError(t, err)

	got := s.Get("a.go", 7)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestFileScopedAnnotationsSeparateFromLineLookups(t *testing.T) {
	s := newStore()

	_, err := s.Add(domain.FileTarget("a.go"), "whole file needs docs")
	require.NoError(t, err)

	assert.Empty(t, s.Get("a.go", 1))
	require.Len(t, s.FileNotes("a.go"), 1)
	assert.True(t, s.HasFileNote("a.go"))
	assert.Len(t, s.GetForFile("a.go"), 1)
}

func TestUpdatePreservesIdentityAndCreation(t *testing.T) {
	s := newStore()

	target := domain.LineTarget("a.go", 3)
	ann, err := s.Add(target, "first draft")
	require.NoError(t, err)

	require.NoError(t, s.Update(target, "second draft"))

	got := s.Get("a.go", 3)
	require.Len(t, got, 1)
	assert.Equal(t, ann.ID, got[0].ID)
	assert.Equal(t, ann.CreatedAt, got[0].CreatedAt)
	assert.Equal(t, "second draft", got[0].Text)
}

func TestUpdateAmbiguityRequiresID(t *testing.T) {
	s := newStore()

	target := domain.LineTarget("a.go", 3)
	_, err := s.Add(target, "one")
	require.NoError(t, err)
	two, err := s.Add(target, "two")
	require.NoError(t, err)

	err = s.Update(target, "rewritten")
	assert.ErrorIs(t, err, domain.ErrAmbiguous)

	// State unchanged by the rejected call.
	got := s.Get("a.go", 3)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)

	require.NoError(t, s.UpdateByID(target, two.ID, "rewritten"))
	got = s.Get("a.go", 3)
	assert.Equal(t, "rewritten", got[1].Text)
}

func TestUpdateUnknownTargetFails(t *testing.T) {
	s := newStore()
	err := s.Update(domain.LineTarget("a.go", 1), "text")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRangeRemovesAllIndexEntries(t *testing.T) {
	s := newStore()

	target := domain.RangeTarget("a.go", 10, 15)
	_, err := s.Add(target, "temp note")
	require.NoError(t, err)

	require.NoError(t, s.Delete(target, ""))
	assert.Equal(t, 0, s.Count())
	for line := 10; line <= 15; line++ {
		assert.False(t, s.Has("a.go", line), "line %d still indexed", line)
	}
}

func TestDeleteAmbiguityAndByID(t *testing.T) {
	s := newStore()

	target := domain.FileTarget("a.go")
	keep, err := s.Add(target, "keep")
	require.NoError(t, err)
	drop, err := s.Add(target, "drop")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(target, ""), domain.ErrAmbiguous)
	assert.Equal(t, 2, s.Count())

	require.NoError(t, s.Delete(target, drop.ID))
	notes := s.FileNotes("a.go")
	require.Len(t, notes, 1)
	assert.Equal(t, keep.ID, notes[0].ID)
}

func TestClearDropsEverything(t *testing.T) {
	s := newStore()

	_, err := s.Add(domain.LineTarget("a.go", 1), "a")
	require.NoError(t, err)
	_, err = s.Add(domain.FileTarget("b.go"), "b")
	require.NoError(t, err)

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.Get("a.go", 1))
	assert.Empty(t, s.FileNotes("b.go"))
}

func TestCustomCapacity(t *testing.T) {
	s := newStore(annotation.WithCapacity(1))

	_, err := s.Add(domain.LineTarget("a.go", 1), "only one fits")
	require.NoError(t, err)
	_, err = s.Add(domain.LineTarget("a.go", 2), "second")
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}
