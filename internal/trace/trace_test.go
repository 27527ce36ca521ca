package trace_test

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/speedometer/internal/errors"
	"codeberg.org/mutker/speedometer/internal/trace"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) trace.Config {
	t.Helper()
	cfg := trace.DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "trace.db")
	return cfg
}

func sample(run uint64, percent float64) *trace.Sample {
	return &trace.Sample{
		Timestamp:      time.Unix(1_700_000_000, int64(percent)*1000),
		Run:            run,
		Source:         "static",
		Reading:        percent,
		DisplayPercent: percent,
		NeedleAngleDeg: -104 + percent*2.08,
		IsAnimating:    true,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, trace.DefaultConfig().Validate(), "disabled config needs no path")

	cfg := trace.Config{Enabled: true}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, trace.ErrInvalidDBPath))

	cfg = trace.Config{Enabled: true, DBPath: "x.db", BatchSize: -1}
	assert.True(t, errors.HasCode(cfg.Validate(), trace.ErrInvalidConfig))
}

func TestDisabledServiceIsNoop(t *testing.T) {
	rec, err := trace.NewService(trace.DefaultConfig(), nil)
	require.NoError(t, err)

	assert.NoError(t, rec.Record(context.Background(), sample(1, 10)))
	assert.NoError(t, rec.Close())

	_, isReader := rec.(trace.Reader)
	assert.False(t, isReader)
}

func TestRecordAndReadBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 3

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	for i, p := range []float64{6, 20, 41, 54} {
		require.NoError(t, repo.Record(ctx, sample(uint64(1+i/2), p)))
	}

	got, err := repo.Samples(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 4, "pending samples are flushed before reading")

	assert.Equal(t, 54.0, got[0].DisplayPercent, "newest first")
	assert.Equal(t, uint64(2), got[0].Run)
	assert.Equal(t, "static", got[0].Source)
	assert.True(t, got[0].IsAnimating)
	assert.False(t, got[0].Perpetual)
	assert.Equal(t, sample(2, 54).Timestamp.UnixNano(), got[0].Timestamp.UnixNano())
	assert.InDelta(t, -104+54*2.08, got[0].NeedleAngleDeg, 1e-9)

	limited, err := repo.Samples(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecordRejectsInvalidSample(t *testing.T) {
	repo, err := trace.NewRepository(testConfig(t), nil)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	assert.True(t, errors.HasCode(repo.Record(ctx, nil), trace.ErrInvalidSample))
	assert.True(t, errors.HasCode(repo.Record(ctx, sample(1, 120)), trace.ErrInvalidSample))

	bad := sample(1, 0)
	bad.DisplayPercent = math.NaN()
	assert.True(t, errors.HasCode(repo.Record(ctx, bad), trace.ErrInvalidSample))
}

func TestRecordRejectsNonFiniteValues(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()

	nan := sample(1, 0)
	nan.Reading = math.NaN()
	assert.True(t, errors.HasCode(repo.Record(ctx, nan), trace.ErrInvalidSample))

	inf := sample(1, 50)
	inf.NeedleAngleDeg = math.Inf(1)
	assert.True(t, errors.HasCode(repo.Record(ctx, inf), trace.ErrInvalidSample))

	require.NoError(t, repo.Record(ctx, sample(2, 42)))
	require.NoError(t, repo.Record(ctx, sample(2, 43)))

	got, err := repo.Samples(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 43.0, got[0].Reading)
	assert.Equal(t, 42.0, got[1].Reading)
}

func TestFailedBatchIsDropped(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TRIGGER refuse_rejected BEFORE INSERT ON samples
		WHEN NEW.source = 'rejected' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()

	bad := sample(1, 10)
	bad.Source = "rejected"
	err = repo.Record(ctx, bad)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, trace.ErrTransactionFailed))

	require.NoError(t, repo.Record(ctx, sample(2, 42)))

	got, err := repo.Samples(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "static", got[0].Source)
	assert.Equal(t, 42.0, got[0].Reading)
}

func TestCloseFlushesAndPersists(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 100
	cfg.BatchTimeout = time.Hour

	rec, err := trace.NewService(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, rec.Record(ctx, sample(1, 33)))
	require.NoError(t, rec.Close())

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.Samples(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 33.0, got[0].DisplayPercent)

	assert.NoError(t, repo.Close())
	assert.NoError(t, repo.Close(), "close is idempotent")
	assert.True(t, errors.HasCode(repo.Record(ctx, sample(1, 1)), trace.ErrClosed))
}

func TestServiceHonoursContext(t *testing.T) {
	rec, err := trace.NewService(testConfig(t), nil)
	require.NoError(t, err)
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = rec.Record(ctx, sample(1, 10))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, trace.ErrOperationTimeout))
}

func TestPeriodicFlush(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 100
	cfg.BatchTimeout = 20 * time.Millisecond

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Record(context.Background(), sample(1, 12)))

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	assert.Eventually(t, func() bool {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM samples").Scan(&n); err != nil {
			return false
		}
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchemaMismatchIsBackedUp(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupDir = filepath.Join(t.TempDir(), "backups")

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	_, err = db.Exec(`
	    CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
	    INSERT INTO schema_versions VALUES (99, datetime('now'));
	    CREATE TABLE samples (legacy TEXT);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, err := trace.NewRepository(cfg, nil)
	require.NoError(t, err)
	defer repo.Close()

	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "trace_v99_")

	require.NoError(t, repo.Record(context.Background(), sample(1, 50)))
	got, err := repo.Samples(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
