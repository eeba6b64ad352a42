// Package ir provides the literal value types shared by the query layers.
//
// This package contains value definitions, canonical JSON and hashing only.
// queryir, querysql and store import ir; ir imports nothing internal.
//
// Key constraints:
//   - NO float literals - ages, ids and counts are int64
//   - IRNull is an explicit value, never a nil interface
//   - Canonical JSON follows RFC 8785 with NFC-normalized strings
package ir
