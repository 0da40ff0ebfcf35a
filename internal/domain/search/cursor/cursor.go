// Package cursor implements the opaque pagination token. The token wraps a
// numeric offset so the response format stays decoupled from the backend's
// pagination mechanics.
package cursor

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const prefix = "v1:"

// Encode returns an opaque token for a result offset.
// Negative offsets encode as offset 0.
func Encode(offset int) string {
	if offset < 0 {
		offset = 0
	}
	return base64.RawURLEncoding.EncodeToString([]byte(prefix + strconv.Itoa(offset)))
}

// Decode extracts the offset from a token. A corrupt, foreign, or empty
// token decodes to offset 0 ("restart from page 1"); Decode never errors.
func Decode(token string) int {
	if token == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0
	}
	payload, ok := strings.CutPrefix(string(raw), prefix)
	if !ok {
		return 0
	}
	offset, err := strconv.Atoi(payload)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
