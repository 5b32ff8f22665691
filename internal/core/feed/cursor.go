package feed

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"Agora/internal/core/posts"
)

// Use :: as delimiter; post ids never contain it
const cursorDelimiter = "::"

// CursorCodec builds and parses HMAC-signed pagination cursors.
// Payload format: created_at(RFC3339Nano)::post_id::signature
type CursorCodec struct {
	secret []byte
}

// NewCursorCodec creates a codec signing cursors with secret
func NewCursorCodec(secret string) *CursorCodec {
	return &CursorCodec{secret: []byte(secret)}
}

// Encode returns the opaque cursor positioned at c
func (cc *CursorCodec) Encode(c posts.Cursor) string {
	payload := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorDelimiter + c.ID
	signed := payload + cursorDelimiter + cc.sign(payload)
	return base64.URLEncoding.EncodeToString([]byte(signed))
}

// Decode parses and verifies a cursor produced by Encode
func (cc *CursorCodec) Decode(cursor string) (*posts.Cursor, error) {
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding", ErrInvalidCursor)
	}

	parts := strings.Split(string(decoded), cursorDelimiter)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: format", ErrInvalidCursor)
	}

	payload := parts[0] + cursorDelimiter + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(cc.sign(payload))) {
		return nil, fmt.Errorf("%w: signature", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp", ErrInvalidCursor)
	}
	if parts[1] == "" {
		return nil, fmt.Errorf("%w: id", ErrInvalidCursor)
	}

	return &posts.Cursor{CreatedAt: createdAt, ID: parts[1]}, nil
}

func (cc *CursorCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, cc.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
