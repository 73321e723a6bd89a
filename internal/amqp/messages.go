package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExpenseSyncMessage asks the worker to push one stored expense to the
// spreadsheet. The worker loads the full expense from the database.
type ExpenseSyncMessage struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(id int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ID:        id,
		MessageID: uuid.NewString(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseSyncMessageFromJSON creates a message from JSON bytes
func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
