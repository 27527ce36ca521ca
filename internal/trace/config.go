package trace

import (
	"path/filepath"
	"time"

	"codeberg.org/mutker/speedometer/internal/errors"
)

const (
	defaultDirPerm      = 0o755
	defaultDBPath       = "speedometer-trace.db"
	defaultBatchSize    = 64
	defaultBatchTimeout = 2 * time.Second
)

type Config struct {
	DBPath string
	// BackupDir receives a copy of the database before a schema rebuild.
	// Empty means a "backups" directory next to DBPath.
	BackupDir    string
	Enabled      bool
	BatchSize    int
	BatchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		Enabled:      false,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate storage settings if tracing is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 0 || c.BatchTimeout < 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			BatchSize    int
			BatchTimeout time.Duration
		}{c.BatchSize, c.BatchTimeout})
	}

	return nil
}

func (c Config) backupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
