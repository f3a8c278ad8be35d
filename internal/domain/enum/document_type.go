package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DocumentType classifies an uploaded document
type DocumentType int

const (
	DocumentTypeContract  DocumentType = 0
	DocumentTypeReceipt   DocumentType = 1
	DocumentTypeStatement DocumentType = 2
	DocumentTypeOther     DocumentType = 3
)

func (t DocumentType) String() string {
	names := [...]string{"Contract", "Receipt", "Statement", "Other"}
	if int(t) < 0 || int(t) >= len(names) {
		return "Other"
	}
	return names[t]
}

func (t DocumentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DocumentType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = DocumentType(i)
		return nil
	}
	switch str {
	case "Contract":
		*t = DocumentTypeContract
	case "Receipt":
		*t = DocumentTypeReceipt
	case "Statement":
		*t = DocumentTypeStatement
	case "Other":
		*t = DocumentTypeOther
	}
	return nil
}

func (t DocumentType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *DocumentType) Scan(value interface{}) error {
	if value == nil {
		*t = DocumentTypeOther
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = DocumentType(v)
	case int:
		*t = DocumentType(v)
	}
	return nil
}
