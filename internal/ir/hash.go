package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashes.
// The version suffix leaves room for changing the algorithm later.
const (
	DomainStatement = "qdsl/statement/v1"
	DomainDataset   = "qdsl/dataset/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementHash fingerprints a compiled statement and its parameters.
// Two executions of the same query with the same bound values share a hash,
// which is what the executor logs as "stmt".
func StatementHash(sql string, params []any) (string, error) {
	args := make(IRArray, len(params))
	for i, p := range params {
		v, err := FromGo(p)
		if err != nil {
			return "", fmt.Errorf("StatementHash: param %d: %w", i, err)
		}
		args[i] = v
	}

	canonical, err := MarshalCanonical(IRObject{
		"sql":    IRString(sql),
		"params": args,
	})
	if err != nil {
		return "", fmt.Errorf("StatementHash: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// DatasetHash fingerprints a seed dataset in its canonical object form.
func DatasetHash(obj IRObject) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("DatasetHash: %w", err)
	}
	return hashWithDomain(DomainDataset, canonical), nil
}

// MustStatementHash is like StatementHash but panics on error.
// Use only in tests or when params are known to be valid.
func MustStatementHash(sql string, params []any) string {
	h, err := StatementHash(sql, params)
	if err != nil {
		panic(err)
	}
	return h
}
