package constants

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DateLayout is the wire format for all date-only values
const DateLayout = "2006-01-02"

// Synchronizer window defaults (overridable via environment)
const (
	DefaultSyncPastDays      = 7
	DefaultSyncFutureDays    = 30
	DefaultSyncMaxFutureDays = 120
	DefaultSyncChunkDays     = 31
)
