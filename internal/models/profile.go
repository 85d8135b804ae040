package models

import "time"

// SyncProfile tracks the sync state of one utility's streams.
type SyncProfile struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	StartDate  time.Time  `json:"start_date"`
	LastSynced *time.Time `json:"last_synced"`
	BaseUnit   string     `json:"base_unit"`
}

// ProfileSettings is the user-editable subset of a SyncProfile.
type ProfileSettings struct {
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	StartDate time.Time `json:"start_date"`
}

// AppStatus is the polled application state for the UI shell.
type AppStatus struct {
	IsDownloading     bool `json:"is_downloading"`
	IsClientAvailable bool `json:"is_client_available"`
}
