package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change later.
const (
	DomainSchema = "valsem/schema/v1"
)

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SchemaHash computes the content-addressed identity of a schema. Two schemas
// with the same declarations in the same order have the same hash.
func SchemaHash(s *Schema) (string, error) {
	canonical, err := MarshalCanonical(s.Value())
	if err != nil {
		return "", fmt.Errorf("SchemaHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSchema, canonical), nil
}

// MustSchemaHash is like SchemaHash but panics on error.
// Use only in tests or when the schema is known to be valid.
func MustSchemaHash(s *Schema) string {
	h, err := SchemaHash(s)
	if err != nil {
		panic(err)
	}
	return h
}
