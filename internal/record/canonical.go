package record

import (
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// fingerprintPayload serializes the observation fields as canonical
// JSON: keys in sorted order, strings NFC-normalized with minimal
// escaping, no floats, no nulls. This is the ONLY serialization that
// may feed the fingerprint; the JSON written to the history file is
// ordinary encoding/json output and carries no identity.
func fingerprintPayload(r Record) []byte {
	tags := NormalizeTags(r.Tags)

	// Keys appended in their canonical (sorted) order.
	b := make([]byte, 0, 128)
	b = append(b, `{"document_count":`...)
	b = strconv.AppendInt(b, int64(r.DocumentCount), 10)
	b = append(b, `,"last_movement_at":`...)
	b = appendCanonicalString(b, canonicalTime(r.LastMovementAt).Format(time.RFC3339))
	b = append(b, `,"tags":[`...)
	for i, t := range tags {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendCanonicalString(b, t)
	}
	b = append(b, `],"title":`...)
	b = appendCanonicalString(b, r.Title)
	b = append(b, '}')
	return b
}

// appendCanonicalString appends s as a canonical JSON string.
//
// Differences from encoding/json:
//   - the string is NFC-normalized first, so composed and decomposed
//     accented text ("ç" vs "c"+combining cedilla) serialize the same
//   - no HTML escaping: <, > and & pass through literally
//   - only quote, backslash and control characters are escaped, with
//     the two-character forms (\b \t \n \f \r) where they exist and
//     lowercase \u00xx otherwise
func appendCanonicalString(dst []byte, s string) []byte {
	s = norm.NFC.String(s)
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c >= 0x20:
			// Multi-byte UTF-8 sequences pass through byte by byte.
			dst = append(dst, c)
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		default:
			const hex = "0123456789abcdef"
			dst = append(dst, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
		}
	}
	return append(dst, '"')
}
