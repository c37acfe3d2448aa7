package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier the backend may encode either as a JSON string or number.
type ID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("backend: invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
