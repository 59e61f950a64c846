// internal/app/system/limits/limits.go
package limits

// Request body size limits. Bodies past the limit are rejected with 400
// before they are fully read.
const (
	// MaxJSONBody bounds single-record create and update requests.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxSyncBody bounds POST /services/sync, which carries a whole
	// offline backlog.
	MaxSyncBody = 8 << 20 // 8 MB
)
