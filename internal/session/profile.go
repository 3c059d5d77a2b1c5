package session

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrMalformedProfile is returned when a stored profile snapshot cannot be parsed.
var ErrMalformedProfile = errors.New("session: malformed profile snapshot")

// Profile is the user snapshot supplied by the records API. Only the fields
// needed for authorization decisions are decoded; the raw document is kept so
// role-specific fields (department, specialization, ...) pass through losslessly.
type Profile struct {
	ID    string
	Name  string
	Email string
	Role  string

	raw json.RawMessage
}

// ParseProfile decodes a profile snapshot, keeping the original bytes.
func ParseProfile(data []byte) (*Profile, error) {
	var head struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, ErrMalformedProfile
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return &Profile{
		ID:    head.ID,
		Name:  head.Name,
		Email: head.Email,
		Role:  head.Role,
		raw:   raw,
	}, nil
}

// JSON returns the original snapshot bytes.
func (p *Profile) JSON() json.RawMessage {
	if p == nil {
		return nil
	}
	return p.raw
}

// Equal reports whether two profiles carry the same snapshot.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return bytes.Equal(p.raw, other.raw)
}
