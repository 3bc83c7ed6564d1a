package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRecord = "telegen/record/v1"
	DomainOutput = "telegen/output/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SchemaHash computes the content-addressed identity of a record definition.
// It covers the name, shape, annotations, type parameters and each field's
// name, type and annotations in order. Doc comments, source positions and
// analyzer policy (optional-wrapper names, capability) are excluded, so equal
// hashes do not imply identical output under different configurations.
func SchemaHash(rec RecordDefinition) (string, error) {
	canonical, err := MarshalCanonical(rec.Canonical())
	if err != nil {
		return "", fmt.Errorf("SchemaHash: failed to marshal %s: %w", rec.Name, err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// OutputHash computes the identity of a generated source file.
func OutputHash(src []byte) string {
	return hashWithDomain(DomainOutput, src)
}

