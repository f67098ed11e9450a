// Package password implements the engine's PBKDF2-style password verifier:
// an encoded string format carrying algorithm, iteration count, salt and
// digest together so a stored hash is self-describing.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mauritsl/restapir"
)

const (
	defaultIterations = 120000
	defaultSaltLen    = 16
	digestLen         = 32
	hashName          = "sha256"
)

// Hash derives an encoded password string for plaintext: a fresh random
// salt, PBKDF2-HMAC-SHA256 derivation, and the format
// pbkdf2$<hash>$<iterations>$<saltLen>$<salt>$<digest>, where the hash name
// is plain text, the iteration count and salt length are decimal, and the
// salt and digest are hex-encoded.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, defaultSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", restapir.Newf(restapir.Unknown, "password: generating salt: %v", err)
	}
	digest := derive(plaintext, salt, defaultIterations)
	return encode(hashName, defaultIterations, salt, digest), nil
}

// IsValid re-derives the digest from plaintext using the parameters
// recorded in encoded and compares it in constant time.
func IsValid(encoded string, plaintext string) (bool, error) {
	name, iterations, salt, digest, err := decode(encoded)
	if err != nil {
		return false, err
	}
	if name != hashName {
		return false, restapir.Newf(restapir.InvalidCredentials, "password: unsupported hash %q", name)
	}
	candidate := derive(plaintext, salt, iterations)
	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

func derive(plaintext string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(plaintext), salt, iterations, digestLen, sha256.New)
}

func encode(hashAlg string, iterations int, salt, digest []byte) string {
	return fmt.Sprintf("pbkdf2$%s$%d$%d$%s$%s", hashAlg, iterations, len(salt), hex.EncodeToString(salt), hex.EncodeToString(digest))
}

func decode(encoded string) (hashAlg string, iterations int, salt, digest []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "pbkdf2" {
		return "", 0, nil, nil, restapir.New(restapir.InvalidCredentials, "password: malformed encoded hash")
	}
	hashAlg = parts[1]
	iterations, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, nil, nil, restapir.Newf(restapir.InvalidCredentials, "password: invalid iteration count: %v", err)
	}
	saltLen, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, nil, nil, restapir.Newf(restapir.InvalidCredentials, "password: invalid salt length: %v", err)
	}
	salt, err = hex.DecodeString(parts[4])
	if err != nil || len(salt) != saltLen {
		return "", 0, nil, nil, restapir.New(restapir.InvalidCredentials, "password: salt length mismatch")
	}
	digest, err = hex.DecodeString(parts[5])
	if err != nil {
		return "", 0, nil, nil, restapir.Newf(restapir.InvalidCredentials, "password: invalid digest: %v", err)
	}
	return hashAlg, iterations, salt, digest, nil
}
