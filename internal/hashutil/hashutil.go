// Package hashutil provides the content hashing used across snapshot
// storage, dedup checks, and version records.
//
// All hashes are lowercase hex SHA-256. Snapshot filenames embed the first
// 8 hex chars (HashPrefix); metadata sidecars and version records store the
// full digest.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// PrefixLen is the number of hex chars embedded in snapshot filenames.
const PrefixLen = 8

// None is the sentinel returned for absent content (e.g. a file that did
// not exist before a first-time edit). It is distinct from Sum(nil), which
// is the hash of a present-but-empty blob.
const None = "none"

// Sum returns the lowercase hex SHA-256 of b.
func Sum(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// SumOrNone returns None when present is false, otherwise Sum(b).
func SumOrNone(b []byte, present bool) string {
	if !present {
		return None
	}
	return Sum(b)
}

// Prefix returns the short form of a full hex digest, used in snapshot
// filenames and as the dedup comparison key. Short inputs pass through
// unchanged so the sentinel None compares only against itself.
func Prefix(full string) string {
	if len(full) <= PrefixLen {
		return full
	}
	return full[:PrefixLen]
}
