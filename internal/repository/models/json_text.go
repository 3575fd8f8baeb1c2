package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONText holds a JSON document stored in a CLOB column.
// An empty value is written as NULL.
type JSONText []byte

// Value implements the driver.Valuer interface
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, errors.New("JSONText Value: invalid JSON")
	}
	return string(j), nil // CLOB은 string으로 바인딩
}

// Scan implements the sql.Scanner interface
func (j *JSONText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONText(v)
	default:
		return errors.New("JSONText Scan: unsupported type " + fmt.Sprintf("%T", value))
	}
	if string(*j) == "null" {
		*j = nil
	}
	return nil
}

// Valid reports whether the column held a document.
func (j JSONText) Valid() bool {
	return len(j) > 0
}

// MarshalJSONText encodes v, returning nil for a nil pointer or slice.
func MarshalJSONText(v interface{}) (JSONText, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return JSONText(data), nil
}

// Unmarshal decodes the document into dest. It is a no-op for NULL.
func (j JSONText) Unmarshal(dest interface{}) error {
	if !j.Valid() {
		return nil
	}
	return json.Unmarshal(j, dest)
}
