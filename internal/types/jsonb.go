package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time interface assertions. Scan is on pointer receivers; Value is
// on value receivers.
var (
	_ sql.Scanner   = (*Factors)(nil)
	_ driver.Valuer = Factors{}
	_ sql.Scanner   = (*Summary)(nil)
	_ driver.Valuer = Summary(nil)
)

// scanJSONB scans a JSONB database value into dest. It handles nil values and
// the []byte and string representations returned by different drivers.
func scanJSONB(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// Scan implements sql.Scanner for the factors JSONB column.
func (f *Factors) Scan(value interface{}) error {
	return scanJSONB(f, value)
}

// Value implements driver.Valuer for the factors JSONB column.
func (f Factors) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for the summary JSONB column.
func (s *Summary) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	return scanJSONB(s, value)
}

// Value implements driver.Valuer for the summary JSONB column.
func (s Summary) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}
