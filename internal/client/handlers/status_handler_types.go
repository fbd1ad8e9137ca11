package handlers

import "github.com/unclealex/devicesync/internal/notify"

// StatusResponse describes the sync state of this client.
type StatusResponse struct {
	Status    string `json:"status"`    // "ok"
	Timestamp string `json:"ts"`        // when the status was computed
	Version   string `json:"version"`   // client version
	Revision  string `json:"revision"`  // client revision
	BuildDate string `json:"buildDate"` // client build date

	LastSynchronised string `json:"lastSynchronised,omitempty"` // watermark of the last completed run
	Offset           int    `json:"offset"`                     // change to resume from
	Pending          *bool  `json:"pending,omitempty"`          // nil when the server could not be asked
	PendingError     string `json:"pendingError,omitempty"`
	Running          string `json:"running,omitempty"` // id of the request being processed
	Queued           int    `json:"queued"`

	Notifications notify.Snapshot `json:"notifications"`
}
