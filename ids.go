package ohist

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Oid is a stable 64-bit identifier of one logical object across all its
// revisions. Oids are densely allocated and never reused.
type Oid uint64

// Tid is a 64-bit transaction identifier. Tids strictly increase in commit
// order and double as packed points in time (see TidAtTime).
type Tid uint64

const (
	// Tid0 sorts before every committed transaction ("beginning of history").
	Tid0 Tid = 0
	// TidMax sorts after every committed transaction ("current head").
	TidMax Tid = 1<<64 - 1
)

// hexWidth is the canonical text width of an Oid or Tid.
const hexWidth = 16

func (oid Oid) String() string { return fmt.Sprintf("%016x", uint64(oid)) }
func (tid Tid) String() string { return fmt.Sprintf("%016x", uint64(tid)) }

// Bytes returns the big-endian canonical encoding of the oid.
func (oid Oid) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(oid))
	return b[:]
}

// Bytes returns the big-endian canonical encoding of the tid.
func (tid Tid) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(tid))
	return b[:]
}

// ParseOid parses the canonical 16-digit hex form of an oid.
func ParseOid(s string) (Oid, error) {
	v, err := parseHex64(s)
	if err != nil {
		return 0, fmt.Errorf("invalid oid %q", s)
	}
	return Oid(v), nil
}

// ParseTid parses the canonical 16-digit hex form of a tid.
func ParseTid(s string) (Tid, error) {
	v, err := parseHex64(s)
	if err != nil {
		return 0, fmt.Errorf("invalid tid %q", s)
	}
	return Tid(v), nil
}

func parseHex64(s string) (uint64, error) {
	if len(s) != hexWidth {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 16, 64)
}

func isHex64(s string) bool {
	if len(s) != hexWidth {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
