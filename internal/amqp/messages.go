package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

// DueItemMessage announces that a recurring definition is due within
// the horizon window. The external materialization job consumes it,
// creates the transaction record and advances next_run_on.
type DueItemMessage struct {
	DefinitionID string            `json:"definitionId"`
	NextRunOn    string            `json:"nextRunOn"` // YYYY-MM-DD
	AmountMinor  int64             `json:"amountMinor"`
	Currency     core.CurrencyCode `json:"currency"`
	Kind         core.Kind         `json:"kind"`
	CategoryName string            `json:"categoryName,omitempty"`
	MerchantName string            `json:"merchantName,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func NewDueItemMessage(def core.RecurringDefinition, categoryName, merchantName string) *DueItemMessage {
	return &DueItemMessage{
		DefinitionID: def.ID,
		NextRunOn:    def.NextRunOn.String(),
		AmountMinor:  def.AmountMinor,
		Currency:     def.Currency,
		Kind:         def.Kind,
		CategoryName: categoryName,
		MerchantName: merchantName,
		Timestamp:    time.Now(),
	}
}

func (m *DueItemMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DueItemMessageFromJSON(data []byte) (*DueItemMessage, error) {
	var msg DueItemMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
