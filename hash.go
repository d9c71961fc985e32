package ohist

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashFunc is the hash function Dump uses unless told otherwise.
const DefaultHashFunc = "sha1"

var (
	hashMu       sync.Mutex
	hashRegistry = map[string]func() hash.Hash{
		"null":     func() hash.Hash { return nullHasher{} },
		"adler32":  func() hash.Hash { return adler32.New() },
		"crc32":    func() hash.Hash { return crc32.NewIEEE() },
		"xxhash64": func() hash.Hash { return xxhash.New() },
		"sha1":     sha1.New,
		"sha256":   sha256.New,
		"sha512":   sha512.New,
	}
)

// NewHash returns a fresh hasher for the named function, or false if the
// function is not registered.
func NewHash(name string) (hash.Hash, bool) {
	hashMu.Lock()
	f := hashRegistry[name]
	hashMu.Unlock()
	if f == nil {
		return nil, false
	}
	return f(), true
}

// RegisterHash adds a hash function under the given name, making it
// available to Dump and recognized by DumpReader.
func RegisterHash(name string, f func() hash.Hash) {
	hashMu.Lock()
	defer hashMu.Unlock()
	if hashRegistry[name] != nil {
		panic("ohist: hash function already registered: " + name)
	}
	hashRegistry[name] = f
}

// nullHasher discards data and digests to a single zero byte. Useful for
// dumps where integrity of the payload does not matter.
type nullHasher struct{}

func (nullHasher) Write(p []byte) (int, error) { return len(p), nil }
func (nullHasher) Sum(b []byte) []byte         { return append(b, 0) }
func (nullHasher) Reset()                      {}
func (nullHasher) Size() int                   { return 1 }
func (nullHasher) BlockSize() int              { return 1 }
