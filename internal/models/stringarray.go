package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray stores an ordered list of strings as a JSON text column.
// A nil slice stays NULL in the database and renders as null in responses,
// matching how attachment lists behave on posts without files.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, fmt.Errorf("stringarray value: %w", err)
	}
	return string(b), nil
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("stringarray scan: unsupported type %T", value)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		// Legacy rows held a bare URL instead of a JSON array.
		*a = StringArray{string(raw)}
		return nil
	}
	*a = out
	return nil
}
