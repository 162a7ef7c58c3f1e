package models

// SyncStatus is the store's relationship with the remote backend
type SyncStatus string

const (
	// SyncStatusSynced means the last remote fetch-and-merge succeeded
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusSyncing means a remote fetch is in flight
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusOffline means the last attempt hit a network-class failure.
	// Local operations continue unaffected; the next Refresh retries.
	SyncStatusOffline SyncStatus = "offline"
	// SyncStatusError means the last attempt hit a non-network remote fault
	SyncStatusError SyncStatus = "error"
)

// SyncState carries the status plus a human-readable detail for the error case
type SyncState struct {
	Status SyncStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}
