package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON is a map stored as a jsonb column, used for free-form per-company
// settings and per-user permission grants.
type JSON map[string]interface{}

// Value implements driver.Valuer so gorm can write a JSON into jsonb.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner so gorm can read a jsonb column back into JSON.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("models: JSON column is not []byte")
	}
	return json.Unmarshal(bytes, j)
}
