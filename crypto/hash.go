package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashBytes returns the raw SHA-256 digest of data.
func HashBytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ModuleAddress derives the custody account address owned by a VM module.
// The result has the same 64-char hex shape as a public key so it can be used
// anywhere an account address is expected, but no private key exists for it:
// only the module's handlers can move its balance.
func ModuleAddress(module string) string {
	return Hash([]byte("module:" + module))
}
