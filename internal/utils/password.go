package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Error codes attached to hashing failures.
const (
	CodeEmptyPassword = "AUTH_EMPTY_PASSWORD"
	CodeHashing       = "AUTH_HASHING_FAILED"
	CodeVerification  = "AUTH_VERIFICATION_FAILED"
)

// Supported digest algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// OWASP argon2id parameters.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// Upper bounds accepted from a stored argon2id digest.  Memory is in KiB.
const (
	maxArgon2Memory = 1 << 21
	maxArgon2Time   = 10
)

const argon2Prefix = "$argon2id$"

// Hasher hashes passwords and checks them against stored digests.
type Hasher interface {
	// Hash returns a salted digest that embeds its own parameters.
	Hash(plain string) (string, error)
	// Verify returns (true, nil) on match and (false, nil) on mismatch.
	// An error means the digest itself could not be processed.
	Verify(plain, digest string) (bool, error)
}

// PasswordHasher writes new digests with one algorithm and verifies
// digests of either supported algorithm, chosen by the digest prefix.
type PasswordHasher struct {
	algorithm  string
	bcryptCost int
}

// NewPasswordHasher returns a hasher producing digests with algorithm.
// bcryptCost is only used for bcrypt digests.
func NewPasswordHasher(algorithm string, bcryptCost int) (*PasswordHasher, error) {
	switch algorithm {
	case AlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
	return &PasswordHasher{algorithm: algorithm, bcryptCost: bcryptCost}, nil
}

// Hash returns a digest of plain using the configured algorithm.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")
	}
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(plain)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", oops.Code(CodeHashing).With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
	return string(b), nil
}

// Verify compares plain against digest in constant time.
func (h *PasswordHasher) Verify(plain, digest string) (bool, error) {
	if strings.HasPrefix(digest, argon2Prefix) {
		return verifyArgon2id(plain, digest)
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code(CodeVerification).With("algorithm", AlgorithmBcrypt).Wrap(err)
	}
}

func hashArgon2id(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code(CodeHashing).With("algorithm", AlgorithmArgon2id).Wrap(err)
	}
	key := argon2.IDKey([]byte(plain), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(plain, digest string) (bool, error) {
	invalid := oops.Code(CodeVerification).With("algorithm", AlgorithmArgon2id)

	parts := strings.Split(digest, "$")
	if len(parts) != 6 {
		return false, invalid.Errorf("invalid digest format")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, invalid.Wrap(err)
	}
	if version != argon2.Version {
		return false, invalid.Errorf("unsupported argon2 version %d", version)
	}
	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, invalid.Wrap(err)
	}
	if threads == 0 || threads > 255 || iterations == 0 {
		return false, invalid.Errorf("invalid argon2 parameters")
	}
	if memory > maxArgon2Memory || iterations > maxArgon2Time {
		return false, invalid.Errorf("argon2 parameters m=%d,t=%d exceed limits", memory, iterations)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, invalid.Wrap(err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, invalid.Wrap(err)
	}
	if len(want) == 0 || len(want) > 1024 {
		return false, invalid.Errorf("invalid key length %d", len(want))
	}

	got := argon2.IDKey([]byte(plain), salt, iterations, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
