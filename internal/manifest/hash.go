package manifest

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// DigestBytes hashes raw manifest content.
func DigestBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine builds a composite key from the content digest and extra parts.
// Each part is length-prefixed before entering the hash, so distinct part
// tuples can never concatenate into the same byte stream. Part order must be
// deterministic on both the writing and the reading side.
func Combine(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	var frame [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(frame[:], uint64(len(p)))
		_, _ = h.Write(frame[:])
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
