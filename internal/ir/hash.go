package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix allows the hashed
// shape to change without colliding with older fingerprints.
const (
	DomainFilter = "qparam/filter/v1"
	DomainQuery  = "qparam/query/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data), hex encoded.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FilterFingerprint identifies a compiled filter by its rendered expression
// and bound parameters. Two filters with the same fingerprint bind the same
// values into the same predicate.
func FilterFingerprint(expression string, params IRObject) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"expression": IRString(expression),
		"params":     params,
	})
	if err != nil {
		return "", fmt.Errorf("FilterFingerprint: %w", err)
	}
	return hashWithDomain(DomainFilter, canonical), nil
}

// QueryFingerprint identifies a compiled SQL statement with its ordered
// arguments. The engine logs it with each planned query.
func QueryFingerprint(sql string, args IRArray) (string, error) {
	canonical, err := MarshalCanonical(IRObject{
		"args": args,
		"sql":  IRString(sql),
	})
	if err != nil {
		return "", fmt.Errorf("QueryFingerprint: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
