package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffnote/internal/adapter/store/sqlite"
)

func TestRecordAndListExports(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := s.RecordExport(ctx, sqlite.ExportRecord{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Branch:      "main",
			Revision:    "abc",
			Files:       2,
			Annotations: 5,
			OutputPath:  "/tmp/out.md",
		})
		require.NoError(t, err)
	}

	records, err := s.ListExports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp), "newest first")
	assert.Equal(t, "main", records[0].Branch)
	assert.Equal(t, 5, records[0].Annotations)
}

func TestListExportsEmpty(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	records, err := s.ListExports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
