package object

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashBytes returns the OID of content. The kind tag is not part of the
// digest, so identical bytes hash identically whatever they are stored as.
func HashBytes(content []byte) OID {
	sum := sha1.Sum(content)
	return OID(hex.EncodeToString(sum[:]))
}

// EmptyTreeOID is the OID of a tree with no entries.
var EmptyTreeOID = HashBytes(nil)

// IsValidOID reports whether s looks like a full hex OID.
func IsValidOID(s string) bool {
	if len(s) != sha1.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
