package ohist

import (
	"testing"
)

func TestEncodeExtension(t *testing.T) {
	deepEqual(t, must(EncodeExtension(nil)), nil)
	deepEqual(t, must(EncodeExtension(map[string]string{})), nil)

	enc := must(EncodeExtension(map[string]string{"b": "2", "a": "1"}))
	// fixmap of two pairs, keys in sorted order
	deepEqual(t, enc, []byte{0x82, 0xa1, 'a', 0xa1, '1', 0xa1, 'b', 0xa1, '2'})
}

func TestExtensionRoundTrip(t *testing.T) {
	exts := []map[string]string{
		{},
		{"app": "test"},
		{"user_name": "alice", "machine": "host1", "note": "emoji ✓"},
	}
	for _, ext := range exts {
		enc := must(EncodeExtension(ext))
		back := must(DecodeExtension(enc))
		deepEqual(t, back, ext)
	}
}

func TestEncodeExtensionDeterministic(t *testing.T) {
	ext := map[string]string{"z": "1", "a": "2", "m": "3", "k": "4"}
	first := must(EncodeExtension(ext))
	for i := 0; i < 10; i++ {
		deepEqual(t, must(EncodeExtension(ext)), first)
	}
}

func TestDecodeExtensionErrors(t *testing.T) {
	for _, data := range [][]byte{
		{0xFF},             // not a map
		{0x81, 0xa1, 'a'},  // truncated value
		{0x81, 0x01, 0x02}, // non-string key
	} {
		if ext, err := DecodeExtension(data); err == nil {
			t.Errorf("DecodeExtension(%x) = %v, wanted error", data, ext)
		}
	}
}
