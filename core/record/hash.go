package record

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is the hex-encoded SHA-256 of a record's canonical form.
// The empty string means "absent" (the side never produced a digest).
type Digest string

// DigestBytes hashes canonical bytes into a Digest.
func DigestBytes(canonical []byte) Digest {
	sum := sha256.Sum256(canonical)
	return Digest(hex.EncodeToString(sum[:]))
}

// DigestRecord canonicalizes a record and hashes the result.
// digest(r1) == digest(r2) iff canonical(r1) == canonical(r2),
// up to SHA-256 collision resistance.
func DigestRecord(rec Record, exclude map[string]struct{}) (Digest, error) {
	canonical, err := Canonicalize(rec, exclude)
	if err != nil {
		return "", err
	}
	return DigestBytes(canonical), nil
}
