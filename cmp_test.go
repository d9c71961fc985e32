package ohist

import (
	"fmt"
	"strings"
	"testing"
)

func TestCmpTxns(t *testing.T) {
	a := &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("alice")},
		Objects: []ObjectRecord{data(0, "hello"), del(2)},
	}

	// Record order is not significant; canonical order decides.
	b := &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("alice")},
		Objects: []ObjectRecord{del(2), data(0, "hello")},
	}
	if !CmpTxns(a, b) {
		t.Error("reordered records reported different")
	}

	o := func(name string, b *Transaction) {
		t.Helper()
		if CmpTxns(a, b) {
			t.Errorf("%s reported equal", name)
		}
	}
	o("different tid", &Transaction{
		TxnInfo: TxnInfo{Tid: tidB, Status: TxnComplete, User: []byte("alice")},
		Objects: a.Objects,
	})
	o("different user", &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("bob")},
		Objects: a.Objects,
	})
	o("different payload", &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("alice")},
		Objects: []ObjectRecord{data(0, "hellO"), del(2)},
	})
	o("different record kind", &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("alice")},
		Objects: []ObjectRecord{data(0, "hello"), data(2, "x")},
	})
	o("missing record", &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete, User: []byte("alice")},
		Objects: []ObjectRecord{data(0, "hello")},
	})
}

func TestCmpTxnsHashOnly(t *testing.T) {
	ho := func(size int64, fn string, digest []byte) *Transaction {
		return &Transaction{
			TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete},
			Objects: []ObjectRecord{&ObjectData{Oid: 0, Size: size, HashFunc: fn, Hash: digest}},
		}
	}

	a := ho(5, "sha1", []byte{1, 2})
	if !CmpTxns(a, ho(5, "sha1", []byte{1, 2})) {
		t.Error("identical hash-only records reported different")
	}
	if CmpTxns(a, ho(5, "sha1", []byte{1, 3})) {
		t.Error("differing digests reported equal")
	}
	if CmpTxns(a, ho(6, "sha1", []byte{1, 2})) {
		t.Error("differing sizes reported equal")
	}
	if CmpTxns(a, ho(5, "crc32", []byte{1, 2})) {
		t.Error("differing hash functions reported equal")
	}

	// A hash-only record cannot be verified against a full payload.
	full := &Transaction{
		TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete},
		Objects: []ObjectRecord{data(0, "hello")},
	}
	if CmpTxns(a, full) || CmpTxns(full, a) {
		t.Error("hash-only record reported equal to a full payload")
	}
}

func TestCmpStorages(t *testing.T) {
	a := fixtureStorage(t)
	b := fixtureStorage(t)

	equal, err := CmpStorages(a, b, EntireHistory, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Fatal("identical histories reported different")
	}
}

func TestCmpStoragesDiffer(t *testing.T) {
	o := func(name string, a, b Storage, wantLog string) {
		t.Helper()
		var log strings.Builder
		equal, err := CmpStorages(a, b, EntireHistory, func(format string, args ...any) {
			fmt.Fprintf(&log, format+"\n", args...)
		})
		if err != nil {
			t.Fatal(err)
		}
		if equal {
			t.Errorf("%s: reported equal", name)
			return
		}
		if !strings.Contains(log.String(), wantLog) {
			t.Errorf("%s: log = %q, wanted mention of %q", name, log.String(), wantLog)
		}
	}

	// One side has an extra transaction at the end.
	a, b := fixtureStorage(t), fixtureStorage(t)
	commitAt(t, b, tidB+1, data(0, "extra"))
	o("extra transaction", a, b, "second storage only")
	o("extra transaction (swapped)", b, a, "first storage only")

	// Same tids, diverging content.
	c := NewMemStorage()
	commitAt(t, c, tidA, data(0, "hello"), data(1, "world\n"),
		withMeta("alice", "initial import"))
	commitAt(t, c, tidB, data(0, "hello, WORLD"), del(2),
		withMeta("", "update"))
	o("diverging content", fixtureStorage(t), c, tidB.String())
}

func TestCmpStoragesRange(t *testing.T) {
	// Restricting the range hides a divergence outside it.
	a, b := fixtureStorage(t), fixtureStorage(t)
	commitAt(t, b, tidB+1, data(0, "extra"))

	equal, err := CmpStorages(a, b, TidRange{Tid0, tidB + 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Fatal("histories differ inside the compared range")
	}
}
