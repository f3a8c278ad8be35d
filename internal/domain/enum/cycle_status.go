package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CycleStatus represents the state of a recurring billing cycle
type CycleStatus int

const (
	CycleStatusActive CycleStatus = 0
	CycleStatusPaused CycleStatus = 1
	CycleStatusEnded  CycleStatus = 2
)

func (s CycleStatus) String() string {
	names := [...]string{"Active", "Paused", "Ended"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Active"
	}
	return names[s]
}

func (s CycleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CycleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = CycleStatus(i)
		return nil
	}
	switch str {
	case "Active":
		*s = CycleStatusActive
	case "Paused":
		*s = CycleStatusPaused
	case "Ended":
		*s = CycleStatusEnded
	}
	return nil
}

func (s CycleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *CycleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CycleStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = CycleStatus(v)
	case int:
		*s = CycleStatus(v)
	}
	return nil
}
