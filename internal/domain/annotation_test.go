package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffnote/internal/domain"
)

func TestTargetKinds(t *testing.T) {
	assert.Equal(t, domain.KindLine, domain.LineTarget("a.go", 12).Kind())
	assert.Equal(t, domain.KindRange, domain.RangeTarget("a.go", 10, 15).Kind())
	assert.Equal(t, domain.KindFile, domain.FileTarget("a.go").Kind())
	assert.True(t, domain.FileTarget("a.go").IsFileScoped())
}

func TestTargetCovers(t *testing.T) {
	rng := domain.RangeTarget("a.go", 10, 15)
	for line := 10; line <= 15; line++ {
		assert.True(t, rng.Covers(line), "line %d", line)
	}
	assert.False(t, rng.Covers(9))
	assert.False(t, rng.Covers(16))

	// File scope attaches to the file, not to any particular line.
	assert.False(t, domain.FileTarget("a.go").Covers(1))
}

func TestTargetValidate(t *testing.T) {
	require.NoError(t, domain.LineTarget("a.go", 1).Validate())
	require.NoError(t, domain.RangeTarget("a.go", 3, 3).Validate())
	require.NoError(t, domain.FileTarget("a.go").Validate())

	assert.ErrorIs(t, domain.LineTarget("", 1).Validate(), domain.ErrInvalidInput)
	assert.ErrorIs(t, domain.RangeTarget("a.go", 5, 2).Validate(), domain.ErrInvalidInput)
}

func TestTargetsAreComparable(t *testing.T) {
	// The store's exact-target matching relies on value equality.
	assert.Equal(t, domain.LineTarget("a.go", 7), domain.RangeTarget("a.go", 7, 7))
	assert.NotEqual(t, domain.LineTarget("a.go", 7), domain.LineTarget("b.go", 7))
}

func TestNewAnnotationAssignsIdentity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := domain.NewAnnotation(domain.LineTarget("a.go", 3), "looks off", now)
	b := domain.NewAnnotation(domain.LineTarget("a.go", 3), "looks off", now)

	require.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, now, a.CreatedAt)
	assert.Equal(t, domain.KindLine, a.Kind())
}

func TestHunkNewExtent(t *testing.T) {
	h := domain.Hunk{
		NewStart: 10,
		Lines: []domain.DiffLine{
			{Kind: domain.LineContext, Content: "a"},
			{Kind: domain.LineRemoved, Content: "b"},
			{Kind: domain.LineAdded, Content: "c"},
			{Kind: domain.LineContext, Content: "d"},
		},
	}
	assert.Equal(t, 3, h.NewExtent())

	malformed := domain.Hunk{Malformed: true, RawText: "@@ bogus @@"}
	assert.Equal(t, 0, malformed.NewExtent())
}
