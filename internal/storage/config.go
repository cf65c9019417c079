package storage

// SnapshotConfig contains the snapshot directory and Badger tuning.
type SnapshotConfig struct {
	// Dir is the badger directory. Required.
	Dir string

	// GCThreshold is the value log discard ratio passed to RunValueLogGC
	// after each save.
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 64MB
	ValueLogFileSize int64

	// NumMemtables is the number of memtables.
	// Default: 2
	NumMemtables int

	// SyncWrites enables fsync after each write.
	// Default: true, so a completed save survives a crash.
	SyncWrites bool
}

// DefaultSnapshotConfig returns the default snapshot configuration for dir.
func DefaultSnapshotConfig(dir string) SnapshotConfig {
	return SnapshotConfig{
		Dir:              dir,
		GCThreshold:      0.5,
		CacheSize:        16 << 20,
		ValueLogFileSize: 64 << 20,
		NumMemtables:     2,
		SyncWrites:       true,
	}
}
