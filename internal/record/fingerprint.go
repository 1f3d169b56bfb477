package record

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintDomain versions the fingerprint scheme. Changing the
// payload shape or the hash algorithm requires bumping the version so
// digests from different schemes can never collide.
const fingerprintDomain = "sei/record/v1"

// Fingerprint returns the content digest of the observation fields:
// title, normalized tags, document count and movement timestamp.
// Category and link are identity and presentation, not content, and
// stay outside the digest. Two observations of the same process are
// "changed" iff their fingerprints differ.
//
// Format: hex(SHA-256(domain + 0x00 + canonical payload)). The null
// separator keeps the domain/payload boundary unambiguous.
func (r Record) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(fingerprintPayload(r))
	return hex.EncodeToString(h.Sum(nil))
}
