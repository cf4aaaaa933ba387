package events

import (
	"encoding/json"
	"time"
)

// Run-progress event types pushed over SSE.
const (
	TypeRunStarted     = "run.started"
	TypeStoreStarted   = "store.started"
	TypeStoreCompleted = "store.completed"
	TypeProductsSaved  = "products.saved"
	TypeRunCompleted   = "run.completed"
	TypeRunFailed      = "run.failed"
	TypeRunStopped     = "run.stopped"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
