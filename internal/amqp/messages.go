package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// ReportRequestMessage asks a worker to render a user's projection into the
// report spreadsheet. The worker loads the records itself; zero Start or End
// fall back to the default projection range.
type ReportRequestMessage struct {
	ID          uuid.UUID `json:"id"`
	UserID      int64     `json:"userId"`
	Start       core.Date `json:"start"`
	End         core.Date `json:"end"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewReportRequestMessage creates a request with a fresh ID.
func NewReportRequestMessage(userID int64, start, end core.Date) *ReportRequestMessage {
	return &ReportRequestMessage{
		ID:          uuid.New(),
		UserID:      userID,
		Start:       start,
		End:         end,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON decodes a message published by ToJSON.
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
