package service

// Analysis kinds used as snapshot cache keys
const (
	KindTimeseries   = "timeseries"
	KindDistribution = "distribution"
	KindPivot        = "pivot"
	KindCorrelation  = "correlation"
	KindLoad         = "load"
)

const (
	// Provider pagination
	SyncPageSize = 100

	// Display limits
	RecentSessionsLimit = 10
	SessionPageSize     = 20

	// Sync state keys
	lastSyncKey = "last_session_sync"
)
