package ohist

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeExtension canonically serializes a transaction's extension
// metadata: msgpack map with keys emitted in sorted order, so identical
// metadata always produces identical bytes (dumps stay comparable
// bit-for-bit). An empty or nil map encodes to no bytes at all, matching
// how storages represent "no extension".
func EncodeExtension(ext map[string]string) ([]byte, error) {
	if len(ext) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ext))
	for k := range ext {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(keys)); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := enc.EncodeString(k); err != nil {
			return nil, err
		}
		if err := enc.EncodeString(ext[k]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeExtension is the inverse of EncodeExtension. No bytes decode to an
// empty map.
func DecodeExtension(data []byte) (map[string]string, error) {
	ext := make(map[string]string)
	if len(data) == 0 {
		return ext, nil
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, fmt.Errorf("invalid extension: %w", err)
	}
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("invalid extension: %w", err)
		}
		v, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("invalid extension: %w", err)
		}
		ext[k] = v
	}
	return ext, nil
}
