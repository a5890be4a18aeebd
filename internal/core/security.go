// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// ArgonParams are the argon2id cost settings encoded into every stored hash.
type ArgonParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// CurrentArgonParams is what new hashes are produced with. Hashes stored
// with anything else are upgraded on the next successful login.
var CurrentArgonParams = ArgonParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var ErrMalformedHash = errors.New("malformed password hash")

type passwordHash struct {
	params ArgonParams
	salt   []byte
	key    []byte
}

func (h passwordHash) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		enc.EncodeToString(h.salt),
		enc.EncodeToString(h.key),
	)
}

func (h passwordHash) matches(password string) bool {
	candidate := derive(password, h.salt, h.params)
	return subtle.ConstantTimeCompare(h.key, candidate) == 1
}

func (h passwordHash) stale() bool {
	p := CurrentArgonParams
	return h.params.Memory != p.Memory ||
		h.params.Time != p.Time ||
		h.params.Threads != p.Threads ||
		h.params.KeyLen != p.KeyLen
}

func derive(password string, salt []byte, p ArgonParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func hashWith(password string, p ArgonParams) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return passwordHash{
		params: p,
		salt:   salt,
		key:    derive(password, salt, p),
	}.String(), nil
}

func parsePasswordHash(encoded string) (passwordHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return passwordHash{}, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return passwordHash{}, fmt.Errorf("%w: algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return passwordHash{}, fmt.Errorf("%w: version %q", ErrMalformedHash, parts[2])
	}

	var h passwordHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return passwordHash{}, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return passwordHash{}, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are tens of bytes
	h.params.KeyLen = uint32(len(h.key))
	//nolint:gosec // G115: same
	h.params.SaltLen = uint32(len(h.salt))

	return h, nil
}

func HashPassword(password string) (string, error) {
	return hashWith(password, CurrentArgonParams)
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := parsePasswordHash(encodedHash)
	if err != nil {
		return false, err
	}
	return h.matches(password), nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// VerifyPasswordTimingSafe verifies password against encodedHash and
// returns a replacement hash when the stored one uses outdated parameters.
// A nil or empty hash still costs one full derivation.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		dummyOnce.Do(func() {
			//nolint:errcheck // an empty dummy still fails parsing in constant time
			dummyHash, _ = HashPassword("account-does-not-exist")
		})
		//nolint:errcheck // result is discarded
		_, _ = VerifyPassword(password, dummyHash)
		return false, "", nil
	}

	h, err := parsePasswordHash(*encodedHash)
	if err != nil {
		return false, "", err
	}

	if !h.matches(password) {
		return false, "", nil
	}

	if !h.stale() {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password is valid; the upgrade is retried next login
		return true, "", nil
	}
	return true, upgraded, nil
}
