package app

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns a 64-char hex capability token. Possession of the token
// is the authorization, so it must come from a CSPRNG.
func NewToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
