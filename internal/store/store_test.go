package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/answer-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleInput() model.RunInput {
	return model.RunInput{
		Question:      "Когда сдавать отчёт?",
		DocumentIDs:   []string{"1_1", "2_1"},
		DocumentCount: 2,
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, sampleInput())
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusQueued, run.Status)

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, model.RunStatusQueued, got.Status)
		assert.Equal(t, sampleInput(), got.Input)
		assert.Nil(t, got.Result)
		assert.Empty(t, got.Error)
	})

	t.Run("UpdateRunStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, sampleInput())
		require.NoError(t, err)

		require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusExtracting))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusExtracting, got.Status)
	})

	t.Run("CompleteRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, sampleInput())
		require.NoError(t, err)

		result := &model.RunResult{
			Answer:           model.NewAnswer("T", "Answer", []string{"1_1"}),
			CitedDocumentIDs: []string{"1_1"},
			Stages: []model.StageResult{
				{Name: "select", Status: model.StageStatusComplete, Duration: 12},
			},
			DurationMs: 40,
		}
		require.NoError(t, s.CompleteRun(ctx, run.ID, result))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		require.NotNil(t, got.Result)
		assert.Equal(t, "T", got.Result.Answer.Title)
		assert.Equal(t, []string{"1_1"}, got.Result.Answer.SourceDocumentIDs)
		assert.Equal(t, []string{"1_1"}, got.Result.CitedDocumentIDs)
		assert.Len(t, got.Result.Stages, 1)
	})

	t.Run("FailRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, sampleInput())
		require.NoError(t, err)

		require.NoError(t, s.FailRun(ctx, run.ID, "llm: request timed out"))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusFailed, got.Status)
		assert.Equal(t, "llm: request timed out", got.Error)
	})

	t.Run("UnknownRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetRun(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed), ErrNotFound)
		assert.ErrorIs(t, s.CompleteRun(ctx, "missing", &model.RunResult{}), ErrNotFound)
		assert.ErrorIs(t, s.FailRun(ctx, "missing", "boom"), ErrNotFound)
	})

	t.Run("ListRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var ids []string
		for range 3 {
			run, err := s.CreateRun(ctx, sampleInput())
			require.NoError(t, err)
			ids = append(ids, run.ID)
		}
		require.NoError(t, s.FailRun(ctx, ids[1], "boom"))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, ids[1], failed[0].ID)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)

		offset, err := s.ListRuns(ctx, RunFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, offset, 1)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestRunFilter_Limit(t *testing.T) {
	assert.Equal(t, defaultListLimit, RunFilter{}.limit())
	assert.Equal(t, defaultListLimit, RunFilter{Limit: -1}.limit())
	assert.Equal(t, 5, RunFilter{Limit: 5}.limit())
}
