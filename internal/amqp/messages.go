package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action tells the worker what happened to a transaction.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// ExportMessage is the lightweight queue payload for ledger export.
// It carries only the transaction ID and the action; the worker fetches
// the full row from the database when it needs one.
type ExportMessage struct {
	ID        int64     `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExportMessage(id int64, action Action) *ExportMessage {
	return &ExportMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Action != ActionUpsert && msg.Action != ActionDelete {
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	return &msg, nil
}
