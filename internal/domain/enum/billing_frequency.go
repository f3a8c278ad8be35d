package enum

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// BillingFrequency represents how often a billing cycle generates invoices
type BillingFrequency int

const (
	BillingFrequencyMonthly   BillingFrequency = 0
	BillingFrequencyQuarterly BillingFrequency = 1
	BillingFrequencyAnnual    BillingFrequency = 2
)

func (f BillingFrequency) String() string {
	names := [...]string{"Monthly", "Quarterly", "Annual"}
	if int(f) < 0 || int(f) >= len(names) {
		return "Monthly"
	}
	return names[f]
}

func (f BillingFrequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *BillingFrequency) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*f = BillingFrequency(i)
		return nil
	}
	switch str {
	case "Monthly":
		*f = BillingFrequencyMonthly
	case "Quarterly":
		*f = BillingFrequencyQuarterly
	case "Annual":
		*f = BillingFrequencyAnnual
	}
	return nil
}

func (f BillingFrequency) Value() (driver.Value, error) {
	return int64(f), nil
}

func (f *BillingFrequency) Scan(value interface{}) error {
	if value == nil {
		*f = BillingFrequencyMonthly
		return nil
	}
	switch v := value.(type) {
	case int64:
		*f = BillingFrequency(v)
	case int:
		*f = BillingFrequency(v)
	}
	return nil
}

// Next advances a billing date by one period
func (f BillingFrequency) Next(from time.Time) time.Time {
	switch f {
	case BillingFrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case BillingFrequencyAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
