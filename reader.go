package ohist

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
)

// DumpReader parses a dump stream back into transactions, lazily: each call
// to ReadTxn fully buffers and validates one transaction block, so memory
// use is bounded by the largest single transaction, not the history size.
//
// The reader is single-pass and forward-only; restart by re-opening the
// source. After a corrupt block every subsequent ReadTxn returns the same
// error; parsing does not attempt recovery, but transactions yielded
// before the failure remain valid.
type DumpReader struct {
	r       *bufio.Reader
	name    string
	line    int
	lastTid Tid
	started bool
	err     error
}

// NewDumpReader wraps r for parsing. name, if non-empty, is used in error
// positions ("name+lineno").
func NewDumpReader(r io.Reader, name string) *DumpReader {
	return &DumpReader{r: bufio.NewReader(r), name: name}
}

// Line returns the current line position in the stream.
func (dr *DumpReader) Line() int { return dr.line }

// NextTxn makes DumpReader a TxnIterator, so a parsed stream can feed
// anything that consumes storage iterators (Analyze, Dump re-encoding).
func (dr *DumpReader) NextTxn() (*Transaction, error) { return dr.ReadTxn() }

var (
	txnRe = regexp.MustCompile(`^txn ([0-9a-f]{16}) (".*")$`)
	objRe = regexp.MustCompile(`^obj ([0-9a-f]{16}) (?:(delete)|from ([0-9a-f]{16})|([0-9]+) ([a-zA-Z0-9_]+):([0-9a-f]+)( -)?)$`)
)

// ReadTxn reads one transaction block. It returns io.EOF at a clean end of
// stream, and a *CorruptDumpError if the block is malformed, truncated,
// fails integrity checks or breaks tid ordering.
func (dr *DumpReader) ReadTxn() (*Transaction, error) {
	if dr.err != nil {
		return nil, dr.err
	}
	txn, err := dr.readTxn()
	if err != nil && err != io.EOF {
		dr.err = err
	}
	return txn, err
}

func (dr *DumpReader) readTxn() (*Transaction, error) {
	l, ok, err := dr.readLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, io.EOF
	}

	m := txnRe.FindSubmatch(l)
	if m == nil {
		return nil, dr.corruptf(nil, "no txn start: %q", l)
	}
	tid, _ := ParseTid(string(m[1]))
	statusb, err := unquote(string(m[2]))
	if err != nil || len(statusb) != 1 {
		return nil, dr.corruptf(err, "invalid txn status")
	}
	status := TxnStatus(statusb[0])
	if !status.Valid() {
		return nil, dr.corruptf(nil, "invalid txn status %q", statusb)
	}
	if dr.started && tid <= dr.lastTid {
		return nil, dr.corruptf(nil, "transaction %v out of order (after %v)", tid, dr.lastTid)
	}

	user, err := dr.readField("user")
	if err != nil {
		return nil, err
	}
	description, err := dr.readField("description")
	if err != nil {
		return nil, err
	}
	extension, err := dr.readField("extension")
	if err != nil {
		return nil, err
	}

	var objs []ObjectRecord
	for {
		l, ok, err := dr.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dr.corruptf(nil, "truncated transaction %v", tid)
		}
		if len(l) == 0 {
			break // end of transaction block
		}

		obj, err := dr.readObject(l, tid)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}

	dr.started, dr.lastTid = true, tid
	return &Transaction{
		TxnInfo: TxnInfo{
			Tid:         tid,
			Status:      status,
			User:        user,
			Description: description,
			Extension:   extension,
		},
		Objects: objs,
	}, nil
}

func (dr *DumpReader) readObject(l []byte, tid Tid) (ObjectRecord, error) {
	m := objRe.FindSubmatch(l)
	if m == nil {
		return nil, dr.corruptf(nil, "invalid obj entry: %q", l)
	}
	oid, _ := ParseOid(string(m[1]))

	switch {
	case m[2] != nil:
		return &ObjectDelete{Oid: oid}, nil

	case m[3] != nil:
		from, _ := ParseTid(string(m[3]))
		if from >= tid {
			return nil, dr.corruptf(nil, "obj %v: back-reference %v is not in the past of txn %v", oid, from, tid)
		}
		return &ObjectCopy{Oid: oid, From: from}, nil
	}

	size, err := strconv.ParseInt(string(m[4]), 10, 64)
	if err != nil || size == math.MaxInt64 {
		return nil, dr.corruptf(err, "obj %v: invalid size", oid)
	}
	hashFunc := string(m[5])
	digest, err := hex.DecodeString(string(m[6]))
	if err != nil {
		return nil, dr.corruptf(err, "obj %v: invalid hash", oid)
	}
	h, known := NewHash(hashFunc)
	if !known {
		return nil, dr.corruptf(nil, "obj %v: unknown hash function %q", oid, hashFunc)
	}
	if len(digest) != h.Size() {
		return nil, dr.corruptf(nil, "obj %v: wrong %s digest length %d", oid, hashFunc, len(digest))
	}

	obj := &ObjectData{Oid: oid, Size: size, HashFunc: hashFunc, Hash: digest}
	if m[7] != nil {
		return obj, nil // hash-only record, no payload follows
	}

	// The size field is untrusted, so the buffer grows from the stream
	// instead of being preallocated to the declared length.
	var payload bytes.Buffer
	if _, err := io.CopyN(&payload, dr.r, size+1); err != nil { // payload plus the trailing LF
		if err == io.EOF {
			return nil, dr.corruptf(nil, "obj %v: truncated data", oid)
		}
		return nil, err
	}
	data := payload.Bytes()
	dr.line += bytes.Count(data, []byte("\n"))
	if data[size] != '\n' {
		return nil, dr.corruptf(nil, "obj %v: no LF after data", oid)
	}
	data = data[:size]

	h.Write(data)
	if sum := h.Sum(nil); !bytes.Equal(sum, digest) {
		return nil, dr.corruptf(nil, "obj %v: data corrupt: %s = %x, expected %x", oid, hashFunc, sum, digest)
	}
	obj.Data = data
	return obj, nil
}

func (dr *DumpReader) readField(name string) ([]byte, error) {
	l, ok, err := dr.readLine()
	if err != nil {
		return nil, err
	}
	prefix := name + " "
	if !ok || !bytes.HasPrefix(l, []byte(prefix)) {
		return nil, dr.corruptf(nil, "no %s", name)
	}
	v, err := unquote(string(l[len(prefix):]))
	if err != nil {
		return nil, dr.corruptf(err, "invalid %s", name)
	}
	return v, nil
}

// readLine returns the next line without its trailing LF. ok is false at a
// clean end of stream. I/O failures of the source propagate unwrapped.
func (dr *DumpReader) readLine() ([]byte, bool, error) {
	l, err := dr.r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	if len(l) == 0 {
		return nil, false, nil
	}
	dr.line++
	l = bytes.TrimSuffix(l, []byte("\n"))
	return l, true, nil
}

func (dr *DumpReader) corruptf(err error, format string, args ...any) error {
	return &CorruptDumpError{dr.name, dr.line, fmt.Sprintf(format, args...), err}
}
