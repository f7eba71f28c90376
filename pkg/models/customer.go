package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Customer is a client or counterparty registration ("cadastro").
// Invoices may point at one through Invoice.CustomerID; the link is advisory.
type Customer struct {
	ID      int64
	Name    string
	TaxID   string // CNPJ, formatted 00.000.000/0000-00 when present
	Phone   string
	Email   string
	Address string

	CreatedAt time.Time
	UpdatedAt time.Time

	Extra Extras
}

// RecordID implements store.Record.
func (c Customer) RecordID() int64 {
	return c.ID
}

type customerWire struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var customerKeys = []string{
	"id", "name", "tax_id", "phone", "email", "address", "created_at", "updated_at",
}

func (c Customer) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(customerWire{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	return appendExtras(data, c.Extra)
}

func (c *Customer) UnmarshalJSON(data []byte) error {
	var w customerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	extra, err := splitExtras(data, customerKeys)
	if err != nil {
		return err
	}

	*c = Customer{
		ID:        w.ID,
		Name:      w.Name,
		TaxID:     w.TaxID,
		Phone:     w.Phone,
		Email:     w.Email,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		Extra:     extra,
	}
	return nil
}
