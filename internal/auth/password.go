package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. Changing any of them invalidates stored digests.
const (
	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 1
	argonKeyLen  = 32
)

// Hasher produces deterministic one-way password digests. The salt is
// application-wide, so equal passwords yield equal digests and a login can
// match on username and digest in a single lookup.
type Hasher struct {
	salt []byte
}

func NewHasher(pepper string) *Hasher {
	return &Hasher{salt: []byte(pepper)}
}

// Hash returns the hex-encoded argon2id digest of password.
func (h *Hasher) Hash(password string) string {
	key := argon2.IDKey([]byte(password), h.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(key)
}
