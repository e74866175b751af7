// Package security hashes account passwords with Argon2id. Hashes use the
// PHC string format so the parameters travel with each stored hash.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash signals a stored hash that is not an Argon2id PHC string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// maxPasswordRunes bounds the work a single login can request.
const maxPasswordRunes = 256

// Params are the Argon2id cost settings encoded into every hash.
type Params struct {
	MemoryKB    uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// ParamsFromConfig clamps the configured costs into safe bounds.
func ParamsFromConfig(cfg config.PasswordConfig) Params {
	return Params{
		MemoryKB:    uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Iterations:  uint32(clamp(cfg.ArgonIterations, 1, 10)),
		Parallelism: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:      uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

// HashPassword derives a salted Argon2id hash for password.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	p := ParamsFromConfig(cfg)
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKB, p.Parallelism, p.KeyLen)
	return encodeHash(p, salt, key), nil
}

// VerifyPassword reports whether password matches encoded. A malformed hash
// returns ErrInvalidHash.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKB, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

// ValidatePassword enforces the configured password policy.
func ValidatePassword(password string, cfg config.PasswordConfig) error {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	n := utf8.RuneCountInString(password)
	if n < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}
	if n > maxPasswordRunes {
		return fmt.Errorf("password must be at most %d characters", maxPasswordRunes)
	}
	return nil
}

func encodeHash(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKB, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// decodeHash parses $argon2id$v=19$m=..,t=..,p=..$salt$key.
func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var (
		p           Params
		parallelism uint32
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKB, &p.Iterations, &parallelism); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if p.MemoryKB == 0 || p.Iterations == 0 || parallelism == 0 || parallelism > 255 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.Parallelism = uint8(parallelism)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
