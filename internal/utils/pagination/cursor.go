package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for tokens that do not decode to a cursor.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque pagination state we encode/decode.
// LastID is the id of the last item on the previous page; results resume
// strictly after it in id order. The id need not still exist or be eligible.
type Cursor struct {
	LastID string `json:"last_id"`
}

// IsZero reports whether c points at the first page.
func (c Cursor) IsZero() bool { return c.LastID == "" }

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// After is shorthand for encoding a cursor positioned after lastID.
func After(lastID string) string {
	token, _ := Encode(Cursor{LastID: lastID})
	return token
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.LastID == "" {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}
