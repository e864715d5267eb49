package users

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ManagedUser is one account tracked on the administration screen.
// Email is the identity key and compares case-insensitively.
type ManagedUser struct {
	Email     string `json:"email"`
	JefeEmail string `json:"jefe_email,omitempty"`
	ID        UserID `json:"id,omitempty"`
}

// Key returns the lower-cased email used for de-duplication.
func (u ManagedUser) Key() string {
	return strings.ToLower(strings.TrimSpace(u.Email))
}

// UserID accepts both numeric and string ids from the remote API.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// decodeList reads a JSON array of users. Elements that do not decode are
// skipped; a body that is not an array is an error.
func decodeList(body []byte) ([]ManagedUser, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	out := make([]ManagedUser, 0, len(raw))
	for _, item := range raw {
		var u ManagedUser
		if err := json.Unmarshal(item, &u); err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
