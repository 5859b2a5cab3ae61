package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// HistorySyncMessage announces a portfolio history row that should be mirrored.
// It carries only identifiers; the worker reads the row back from the database.
type HistorySyncMessage struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	Date        string    `json:"date"`
	Version     int64     `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewHistorySyncMessage(id, portfolioID int64, date string, version int64) *HistorySyncMessage {
	return &HistorySyncMessage{
		ID:          id,
		PortfolioID: portfolioID,
		Date:        date,
		Version:     version,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *HistorySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HistorySyncMessageFromJSON decodes a message and rejects ones without a row id.
func HistorySyncMessageFromJSON(data []byte) (*HistorySyncMessage, error) {
	var msg HistorySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("message has invalid id %d", msg.ID)
	}
	return &msg, nil
}
