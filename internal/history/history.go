// Package history keeps the registry of server sessions and the log of
// edits made in each of them.
package history

import "time"

// Edit is a single recorded mutation of a session workspace.
type Edit struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Session is a registered workspace.
type Session struct {
	ID        string    `json:"id"`
	Dir       string    `json:"dir"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Filter controls which edits are returned by List.
type Filter struct {
	SessionID string
	Action    string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
