package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is a message or user identifier. The hot API emits ids either as JSON
// strings or as numbers depending on the endpoint, both decode to the same ID.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return id == ""
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}
