package ohist

import (
	"bufio"
	"fmt"
	"io"
)

// TxnIterator produces transactions of a history in strictly increasing tid
// order. NextTxn returns io.EOF after the last transaction.
type TxnIterator interface {
	NextTxn() (*Transaction, error)
}

// DumpOptions control the wire form Dump produces.
type DumpOptions struct {
	// HashFunc names the registered hash function for content records.
	// Empty means DefaultHashFunc.
	HashFunc string

	// HashOnly omits payload bytes, emitting only sizes and digests. Such
	// dumps verify content identity but cannot be restored.
	HashOnly bool
}

// Dump serializes transactions to w in the dump format (see package doc).
// It streams: each transaction block is written as it arrives from it, so
// arbitrarily long histories never need buffering.
//
// A failure of w aborts the dump with no partial-block guarantee; the caller
// must treat the sink as indeterminate after an error.
func Dump(w io.Writer, it TxnIterator, opt DumpOptions) error {
	hashFunc := opt.HashFunc
	if hashFunc == "" {
		hashFunc = DefaultHashFunc
	}
	if _, ok := NewHash(hashFunc); !ok {
		return fmt.Errorf("dump: unknown hash function %q", hashFunc)
	}

	bw := bufio.NewWriter(w)
	var lastTid Tid
	first := true
	for {
		txn, err := it.NextTxn()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if !first && txn.Tid <= lastTid {
			return fmt.Errorf("dump: transaction %v out of order (after %v)", txn.Tid, lastTid)
		}
		first, lastTid = false, txn.Tid

		if err := dumpTxn(bw, txn, hashFunc, opt.HashOnly); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func dumpTxn(bw *bufio.Writer, txn *Transaction, hashFunc string, hashOnly bool) error {
	_, err := fmt.Fprintf(bw, "txn %v %s\nuser %s\ndescription %s\nextension %s\n",
		txn.Tid, quote([]byte{byte(txn.Status)}),
		quote(txn.User), quote(txn.Description), quote(txn.Extension))
	if err != nil {
		return err
	}

	objs := make([]ObjectRecord, len(txn.Objects))
	copy(objs, txn.Objects)
	sortObjects(objs)

	for _, obj := range objs {
		switch o := obj.(type) {
		case *ObjectDelete:
			_, err = fmt.Fprintf(bw, "obj %v delete\n", o.Oid)

		case *ObjectCopy:
			if o.From >= txn.Tid {
				return fmt.Errorf("dump: txn %v: obj %v: back-reference %v is not in the past", txn.Tid, o.Oid, o.From)
			}
			_, err = fmt.Fprintf(bw, "obj %v from %v\n", o.Oid, o.From)

		case *ObjectData:
			err = dumpData(bw, txn, o, hashFunc, hashOnly)

		default:
			panic(fmt.Sprintf("invalid object record %T", obj))
		}
		if err != nil {
			return err
		}
	}

	return bw.WriteByte('\n')
}

func dumpData(bw *bufio.Writer, txn *Transaction, o *ObjectData, hashFunc string, hashOnly bool) error {
	size, digest := o.Size, o.Hash
	if o.Data != nil {
		size = int64(len(o.Data))
		h, _ := NewHash(hashFunc)
		h.Write(o.Data)
		digest = h.Sum(nil)
	} else {
		// Hash-only record: nothing to rehash, reuse the captured digest.
		if o.Hash == nil {
			return fmt.Errorf("dump: txn %v: obj %v: hash-only record without a hash", txn.Tid, o.Oid)
		}
		hashFunc = o.HashFunc
	}

	if _, err := fmt.Fprintf(bw, "obj %v %d %s:%x", o.Oid, size, hashFunc, digest); err != nil {
		return err
	}
	if o.Data == nil || hashOnly {
		if _, err := bw.WriteString(" -"); err != nil {
			return err
		}
	} else {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		if _, err := bw.Write(o.Data); err != nil {
			return err
		}
	}
	return bw.WriteByte('\n')
}
