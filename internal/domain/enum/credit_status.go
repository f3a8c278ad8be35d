package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CreditStatus represents how much of a credit note has been consumed
type CreditStatus int

const (
	CreditStatusAvailable        CreditStatus = 0
	CreditStatusPartiallyApplied CreditStatus = 1
	CreditStatusFullyApplied     CreditStatus = 2
	CreditStatusExpired          CreditStatus = 3
)

func (s CreditStatus) String() string {
	names := [...]string{"Available", "PartiallyApplied", "FullyApplied", "Expired"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Available"
	}
	return names[s]
}

func (s CreditStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CreditStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CreditStatus(i)
		return nil
	}
	switch str {
	case "Available":
		*s = CreditStatusAvailable
	case "PartiallyApplied":
		*s = CreditStatusPartiallyApplied
	case "FullyApplied":
		*s = CreditStatusFullyApplied
	case "Expired":
		*s = CreditStatusExpired
	}
	return nil
}

func (s CreditStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CreditStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CreditStatusAvailable
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CreditStatus(v)
	case int:
		*s = CreditStatus(v)
	}
	return nil
}
