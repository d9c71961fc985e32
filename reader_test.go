package ohist

import (
	"errors"
	"strings"
	"testing"
)

func TestReadTxnHashOnly(t *testing.T) {
	stor := fixtureStorage(t)
	var buf strings.Builder
	if err := Dump(&buf, stor.Iterate(EntireHistory), DumpOptions{HashOnly: true}); err != nil {
		t.Fatal(err)
	}

	txns, err := parseAll(buf.String())
	if err != nil {
		t.Fatal(err)
	}
	o := txns[0].Objects[0].(*ObjectData)
	if !o.HashOnly() {
		t.Fatalf("parsed record should be hash-only: %+v", o)
	}
	deepEqual(t, o.Size, int64(5))
	deepEqual(t, o.HashFunc, "sha1")
	if o.Hash == nil || o.Data != nil {
		t.Fatalf("hash-only record carries wrong fields: %+v", o)
	}
}

func TestReadTxnCorrupt(t *testing.T) {
	valid := dumpAll(t, fixtureStorage(t))

	o := func(name, text, wantMsg string) {
		t.Helper()
		_, err := parseAll(text)
		var cerr *CorruptDumpError
		if !errors.As(err, &cerr) {
			t.Errorf("%s: err = %v, wanted *CorruptDumpError", name, err)
			return
		}
		if !strings.Contains(err.Error(), wantMsg) {
			t.Errorf("%s: err = %q, wanted mention of %q", name, err, wantMsg)
		}
	}

	o("garbage start", "garbage\n", "no txn start")
	o("flipped payload byte",
		strings.Replace(valid, "\nhello\n", "\nhellO\n", 1),
		"data corrupt")
	o("truncated payload",
		valid[:strings.Index(valid, "hello, world")],
		"truncated data")
	o("truncated transaction",
		valid[:strings.LastIndex(valid, "extension")],
		"no extension")
	o("unknown hash function",
		strings.Replace(valid, "sha1:", "blake9:", 1),
		"unknown hash function")
	o("wrong digest length",
		strings.Replace(valid, "sha1:"+sha1Hello, "sha1:aaf4", 1),
		"digest length")
	o("invalid status",
		strings.Replace(valid, `" "`, `"x"`, 1),
		"invalid txn status")
	o("size mismatch",
		strings.Replace(valid, "5 sha1:"+sha1Hello, "4 sha1:"+sha1Hello, 1),
		"no LF after data")
	o("absurd size field",
		"txn 03c4857600000000 \" \"\nuser \"\"\ndescription \"\"\nextension \"\"\n"+
			"obj 0000000000000000 9223372036854775807 sha1:"+sha1Hello+"\nhello\n\n",
		"invalid size")
	o("size field beyond int64",
		"txn 03c4857600000000 \" \"\nuser \"\"\ndescription \"\"\nextension \"\"\n"+
			"obj 0000000000000000 99999999999999999999 sha1:"+sha1Hello+"\nhello\n\n",
		"invalid size")
	o("oversized payload declaration",
		"txn 03c4857600000000 \" \"\nuser \"\"\ndescription \"\"\nextension \"\"\n"+
			"obj 0000000000000000 4611686018427387904 sha1:"+sha1Hello+"\nhello\n\n",
		"truncated data")
	o("back-reference not in the past",
		"txn 03c4857600000000 \" \"\nuser \"\"\ndescription \"\"\nextension \"\"\n"+
			"obj 0000000000000001 from 03c4857600000000\n\n",
		"not in the past")

	// Two copies of the same stream violate tid ordering at the seam.
	first := valid[:strings.Index(valid, "txn "+tidB.String())]
	o("out of order", first+first, "out of order")
}

func TestReadTxnCorruptPosition(t *testing.T) {
	_, err := parseAll("garbage\n")
	var cerr *CorruptDumpError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, wanted *CorruptDumpError", err)
	}
	deepEqual(t, cerr.Name, "test")
	deepEqual(t, cerr.Line, 1)
	if !strings.HasPrefix(err.Error(), "test+1: corrupt dump:") {
		t.Errorf("err = %q, wanted test+1 position prefix", err)
	}
}

func TestReadTxnStickyError(t *testing.T) {
	dr := NewDumpReader(strings.NewReader("garbage\n"), "test")
	_, err1 := dr.ReadTxn()
	_, err2 := dr.ReadTxn()
	if err1 == nil || err2 != err1 {
		t.Fatalf("errors not sticky: %v, then %v", err1, err2)
	}
}

func TestReadTxnPartialStreamKeepsPrefix(t *testing.T) {
	valid := dumpAll(t, fixtureStorage(t))
	corrupt := strings.Replace(valid, "\nhello, world\n", "\nhello, worlD\n", 1)

	// The first transaction parses fine; only the damaged one fails.
	txns, err := parseAll(corrupt)
	if err == nil {
		t.Fatal("parse of damaged stream succeeded")
	}
	if len(txns) != 1 || txns[0].Tid != tidA {
		t.Fatalf("got %d transactions before the failure, wanted the first one", len(txns))
	}
}

func TestReadTxnLineCountsPayload(t *testing.T) {
	valid := dumpAll(t, fixtureStorage(t))
	dr := NewDumpReader(strings.NewReader(valid), "test")
	must(dr.ReadTxn())

	// txn 1 spans 4 header lines, 2 obj headers, payloads "hello" (one
	// line) and "world\n" (two), and the terminator.
	deepEqual(t, dr.Line(), 10)
}
