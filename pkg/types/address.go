package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is the shipping address snapshot copied onto an order.
type Address struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Ward      string `json:"ward,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

// Validate reports the first missing required part.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Recipient) == "":
		return fmt.Errorf("address: missing recipient")
	case strings.TrimSpace(a.Phone) == "":
		return fmt.Errorf("address: missing phone")
	case strings.TrimSpace(a.Line1) == "":
		return fmt.Errorf("address: missing line1")
	case strings.TrimSpace(a.City) == "":
		return fmt.Errorf("address: missing city")
	}
	return nil
}

// Value stores the snapshot as JSON so it survives both Postgres jsonb and SQLite text.
func (a Address) Value() (driver.Value, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = "VN"
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), a)
	case []byte:
		return json.Unmarshal(v, a)
	default:
		return fmt.Errorf("address: unsupported Scan type %T", src)
	}
}

// OneLine renders the address for notifications and logs.
func (a Address) OneLine() string {
	parts := []string{}
	for _, part := range []string{a.Line1, a.Ward, a.District, a.City, a.Country} {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
