package model

import (
	"encoding/json"
	"time"
)

// ProviderTickTick is the provider name recorded on every mapping row.
const ProviderTickTick = "ticktick"

// SyncMapping links one local item to one remote item for a provider. At
// most one row exists per (user, provider, item_type, remote_id) and per
// (user, provider, item_type, local_id).
type SyncMapping struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	ItemType     ItemType  `json:"item_type"`
	LocalID      string    `json:"local_id"`
	RemoteID     string    `json:"remote_id"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

type SyncDirection string

const (
	SyncFromRemote SyncDirection = "from-remote"
	SyncToRemote   SyncDirection = "to-remote"
	SyncTwoWay     SyncDirection = "two-way"
)

type ResolutionStrategy string

const (
	ResolveNewer      ResolutionStrategy = "newer"
	ResolveRemoteWins ResolutionStrategy = "remote-wins"
	ResolveLocalWins  ResolutionStrategy = "local-wins"
)

type SyncRequest struct {
	ProjectID          string `json:"projectId"`
	SyncType           string `json:"syncType"`
	Direction          string `json:"direction"`
	ResolutionStrategy string `json:"resolutionStrategy"`
	// IncludeTags opts out of tag syncing when explicitly false; absent
	// means tags are synced.
	IncludeTags *bool `json:"includeTags"`
}

// WithTags resolves the optional IncludeTags flag.
func (r SyncRequest) WithTags() bool {
	return r.IncludeTags == nil || *r.IncludeTags
}

type SyncResult struct {
	Success    bool      `json:"success"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Deleted    int       `json:"deleted"`
	Errors     int       `json:"errors"`
	Message    string    `json:"message"`
	LastSynced time.Time `json:"lastSynced"`
}

type SyncHistory struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	SyncTime   time.Time       `json:"sync_time"`
	SyncType   string          `json:"sync_type"`
	Status     string          `json:"status"`
	DurationMs int64           `json:"duration_ms"`
	Details    json.RawMessage `json:"details,omitempty"`
}
