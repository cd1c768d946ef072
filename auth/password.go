package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommendation).
const (
	Memory      = 64 * 1024
	Iterations  = 3
	Parallelism = 2
	SaltLength  = 16
	KeyLength   = 32
)

var errInvalidHash = errors.New("invalid argon2id hash format")

// HashPassword returns a PHC-formatted argon2id hash, the value expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, Parallelism, KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, Memory, Iterations, Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// CheckHash reports whether encodedHash can be used by ComparePassword.
func CheckHash(encodedHash string) error {
	_, err := parseHash(encodedHash)
	return err
}

// ComparePassword re-derives the key with the parameters stored in the hash and
// compares in constant time.
func ComparePassword(password, encodedHash string) (bool, error) {
	params, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}
	comparison := argon2.IDKey([]byte(password), params.salt, params.iterations, params.memory,
		params.parallelism, uint32(len(params.key)))
	return subtle.ConstantTimeCompare(params.key, comparison) == 1, nil
}

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parseHash(encodedHash string) (hashParams, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return hashParams{}, errInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return hashParams{}, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	if version != argon2.Version {
		return hashParams{}, fmt.Errorf("%w: unsupported version %d", errInvalidHash, version)
	}
	var params hashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.iterations, &params.parallelism); err != nil {
		return hashParams{}, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	var err error
	if params.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return hashParams{}, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	if params.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return hashParams{}, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	if len(params.key) == 0 {
		return hashParams{}, errInvalidHash
	}
	return params, nil
}
