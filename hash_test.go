package ohist

import (
	"encoding/hex"
	"hash"
	"hash/fnv"
	"testing"
)

func TestNewHash(t *testing.T) {
	tests := []struct {
		name   string
		digest string // of "hello"
	}{
		{"null", "00"},
		{"adler32", "062c0215"},
		{"crc32", "3610a686"},
		{"sha1", sha1Hello},
	}
	for _, test := range tests {
		h, ok := NewHash(test.name)
		if !ok {
			t.Errorf("NewHash(%q) unknown", test.name)
			continue
		}
		h.Write([]byte("hello"))
		if got := hex.EncodeToString(h.Sum(nil)); got != test.digest {
			t.Errorf("%s(hello) = %s, wanted %s", test.name, got, test.digest)
		}
		deepEqual(t, h.Size(), len(test.digest)/2)
	}

	if _, ok := NewHash("blake9"); ok {
		t.Error("NewHash accepted an unregistered function")
	}
}

func TestRegisterHash(t *testing.T) {
	RegisterHash("fnv32a", func() hash.Hash { return fnv.New32a() })

	h, ok := NewHash("fnv32a")
	if !ok {
		t.Fatal("registered function not found")
	}
	h.Write([]byte("hello"))
	deepEqual(t, hex.EncodeToString(h.Sum(nil)), "4f9f2cab")
}

func TestRegisterHashDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	RegisterHash("sha1", nil)
}
