package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/schema"
	"github.com/docsentry/docsentry/internal/types"
)

func TestArtifactStoreSave(t *testing.T) {
	s, err := NewArtifactStore(filepath.Join(t.TempDir(), "output"))
	require.NoError(t, err)

	path, err := s.SaveAnalysis("S3", "# S3 Security Controls Analysis\n")
	require.NoError(t, err)
	assert.Equal(t, "s3_security_analysis.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# S3 Security Controls Analysis")

	path, err = s.SaveTable("Elastic Beanstalk", schema.Header)
	require.NoError(t, err)
	assert.Equal(t, "elastic_beanstalk_security_controls.csv", filepath.Base(path))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, schema.Header+"\n", string(content))

	path, err = s.SaveMaster(schema.Header + ",awsService\n")
	require.NoError(t, err)
	assert.Equal(t, MasterFilename, filepath.Base(path))
}

func TestArtifactStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	_, err := NewArtifactStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunDAORecordAndHistory(t *testing.T) {
	dao := NewRunDAO(openTestDB(t))
	ctx := context.Background()

	table := schema.Header + "\nAWS-S3-001,Encryption,High,p,c,i,r"
	run := &pipeline.Run{
		ID:          types.NewID(),
		Subject:     "S3",
		Table:       table,
		Validation:  schema.Validate(table),
		CompletedAt: time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, dao.Record(ctx, run))
	require.NoError(t, dao.RecordFailure(ctx, "BadService", "documentation search unavailable"))

	records, err := dao.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "BadService", records[0].Subject)
	assert.False(t, records[0].Valid)
	assert.Contains(t, records[0].Error, "unavailable")

	assert.Equal(t, "S3", records[1].Subject)
	assert.Equal(t, run.ID, records[1].ID)
	assert.Equal(t, 1, records[1].RowCount)
	assert.True(t, records[1].Valid)
	assert.Empty(t, records[1].Error)
}

func TestRunDAOHistoryLimit(t *testing.T) {
	dao := NewRunDAO(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, dao.RecordFailure(ctx, "svc", "boom"))
	}

	records, err := dao.History(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = dao.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 5, "non-positive limit falls back to the default")
}
