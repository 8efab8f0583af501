package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SaltEnv names the environment variable that overrides the default salt.
// Accepts any integer literal strconv.ParseInt understands with base 0
// ("12345", "-7", "0x7fffffff").
const SaltEnv = "VALSEM_HASH_SALT"

// ClockSalt derives a salt from a high-resolution clock reading.
// Salts from different process runs differ, so structural hash codes are not
// a stable fingerprint across runs.
func ClockSalt(now time.Time) int32 {
	n := uint64(now.UnixNano())
	return int32(uint32(n ^ n>>32))
}

// ParseSalt parses a salt override.
func ParseSalt(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid salt %q: %w", s, err)
	}
	if n < -1<<31 || n > 1<<32-1 {
		return 0, fmt.Errorf("invalid salt %q: out of 32-bit range", s)
	}
	return int32(uint32(n)), nil
}

// SaltFromEnv returns the salt override from SaltEnv.
// ok is false when the variable is unset or empty.
func SaltFromEnv() (salt int32, ok bool, err error) {
	s := os.Getenv(SaltEnv)
	if s == "" {
		return 0, false, nil
	}
	salt, err = ParseSalt(s)
	if err != nil {
		return 0, false, err
	}
	return salt, true, nil
}
