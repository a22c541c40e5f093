package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleRecordedLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleRecordedEvent struct {
	SaleID             uuid.UUID          `json:"sale_id"`
	CustomerNationalID string             `json:"customer_national_id"`
	Total              decimal.Decimal    `json:"total"`
	Items              []SaleRecordedLine `json:"items"`
	CreatedAt          time.Time          `json:"created_at"`
}

func (e SaleRecordedEvent) ID() string {
	return e.SaleID.String()
}

func (e SaleRecordedEvent) Subject() string {
	return messaging.SalesRecordedSubject
}

func (e SaleRecordedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
