package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata represents JSONB metadata stored in PostgreSQL.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage.
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	switch v := value.(type) {
	case Metadata:
		*m = v
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
}
