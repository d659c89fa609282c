package profile

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enfq/app/internal/database"
	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/models"
)

func openDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "profile.db")
	require.NoError(t, database.Migrate(database.DriverSQLite, dsn))
	db, err := database.Connect(context.Background(), database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, dsn
}

func TestOpenCreatesDefault(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	s, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	p := s.Snapshot()
	assert.False(t, p.IsPremium)
	assert.Empty(t, p.DeviceIDs)
	assert.NotNil(t, p.DeviceIDs)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM profiles`).Scan(&count))
	assert.Equal(t, 1, count, "default record should be persisted on first launch")
}

func TestUpdatePersistsAcrossReopen(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()

	s, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	residency := models.ObjectiveResidency
	area := models.AreaObstetrics
	_, err = s.Update(ctx, func(p *models.Profile) (bool, error) {
		ActivatePremium(p, "fp-1", now)
		RecordAnswer(p, true)
		p.Name = "Katia"
		p.Objective = &residency
		p.ResidencyArea = &area
		return true, nil
	})
	require.NoError(t, err)

	reopened, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)
	p := reopened.Snapshot()

	assert.Equal(t, "Katia", p.Name)
	assert.True(t, p.IsPremium)
	assert.Equal(t, []string{"fp-1"}, p.DeviceIDs)
	require.NotNil(t, p.SubscriptionExpiry)
	assert.True(t, p.SubscriptionExpiry.Equal(now.Add(SubscriptionPeriod)))
	require.NotNil(t, p.Objective)
	assert.Equal(t, models.ObjectiveResidency, *p.Objective)
	require.NotNil(t, p.ResidencyArea)
	assert.Equal(t, models.AreaObstetrics, *p.ResidencyArea)
	assert.Equal(t, 1, p.QuestionsAnswered)
	assert.Equal(t, 1, p.MaxStreak)
}

func TestUpdateErrorDiscardsMutation(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()
	s, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Update(ctx, func(p *models.Profile) (bool, error) {
		p.QuestionsAnswered = 99
		return true, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Snapshot().QuestionsAnswered)
}

func TestUpdateUnchangedSkipsWrite(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()
	s, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	var before int64
	require.NoError(t, db.QueryRow(`SELECT updated_at FROM profiles`).Scan(&before))
	time.Sleep(5 * time.Millisecond)

	_, err = s.Update(ctx, func(p *models.Profile) (bool, error) { return false, nil })
	require.NoError(t, err)

	var after int64
	require.NoError(t, db.QueryRow(`SELECT updated_at FROM profiles`).Scan(&after))
	assert.Equal(t, before, after)
}

func TestConcurrentUpdatesMerge(t *testing.T) {
	db, _ := openDB(t)
	ctx := context.Background()
	s, err := Open(ctx, db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(correct bool) {
			defer wg.Done()
			_, err := s.Update(ctx, func(p *models.Profile) (bool, error) {
				RecordAnswer(p, correct)
				return true, nil
			})
			assert.NoError(t, err)
		}(i%2 == 0)
	}
	wg.Wait()

	p := s.Snapshot()
	assert.Equal(t, n, p.QuestionsAnswered, "no update may be lost")
	assert.Equal(t, n/2, p.CorrectAnswers)
}

func TestSnapshotIsACopy(t *testing.T) {
	db, _ := openDB(t)
	s, err := Open(context.Background(), db, "enfq_profile", logger.Discard())
	require.NoError(t, err)

	p := s.Snapshot()
	p.DeviceIDs = append(p.DeviceIDs, "mutated")
	assert.Empty(t, s.Snapshot().DeviceIDs)
}
