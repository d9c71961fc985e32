package ohist

import (
	"bytes"
	"io"
)

// CmpTxns compares two transactions field for field, with object records in
// canonical order, the way a bit-for-bit dump comparison would see them.
func CmpTxns(a, b *Transaction) bool {
	if a.Tid != b.Tid || a.Status != b.Status ||
		!bytes.Equal(a.User, b.User) ||
		!bytes.Equal(a.Description, b.Description) ||
		!bytes.Equal(a.Extension, b.Extension) {
		return false
	}
	if len(a.Objects) != len(b.Objects) {
		return false
	}

	objsA := make([]ObjectRecord, len(a.Objects))
	objsB := make([]ObjectRecord, len(b.Objects))
	copy(objsA, a.Objects)
	copy(objsB, b.Objects)
	sortObjects(objsA)
	sortObjects(objsB)

	for i := range objsA {
		if !cmpObject(objsA[i], objsB[i]) {
			return false
		}
	}
	return true
}

func cmpObject(a, b ObjectRecord) bool {
	switch oa := a.(type) {
	case *ObjectData:
		ob, ok := b.(*ObjectData)
		if !ok || oa.Oid != ob.Oid {
			return false
		}
		if oa.HashOnly() || ob.HashOnly() {
			// Without both payloads only the captured digests can be
			// compared; a hash-only record never equals a full one.
			return oa.HashOnly() && ob.HashOnly() &&
				oa.Size == ob.Size && oa.HashFunc == ob.HashFunc &&
				bytes.Equal(oa.Hash, ob.Hash)
		}
		return bytes.Equal(oa.Data, ob.Data)
	case *ObjectCopy:
		ob, ok := b.(*ObjectCopy)
		return ok && oa.Oid == ob.Oid && oa.From == ob.From
	case *ObjectDelete:
		ob, ok := b.(*ObjectDelete)
		return ok && oa.Oid == ob.Oid
	default:
		return false
	}
}

// CmpStorages compares two histories over the range r in lockstep,
// transaction by transaction. It stops at the first difference found and
// reports equality; logf, if non-nil, receives a line describing where the
// histories diverge.
func CmpStorages(a, b Storage, r TidRange, logf func(format string, args ...any)) (bool, error) {
	if logf == nil {
		logf = func(format string, args ...any) {}
	}

	itA, itB := a.Iterate(r), b.Iterate(r)
	for {
		txnA, errA := itA.NextTxn()
		txnB, errB := itB.NextTxn()
		if errA != nil && errA != io.EOF {
			return false, errA
		}
		if errB != nil && errB != io.EOF {
			return false, errB
		}

		endA, endB := errA == io.EOF, errB == io.EOF
		switch {
		case endA && endB:
			return true, nil
		case endA:
			logf("not-equal: tid %v present in second storage only", txnB.Tid)
			return false, nil
		case endB:
			logf("not-equal: tid %v present in first storage only", txnA.Tid)
			return false, nil
		}

		if txnA.Tid != txnB.Tid {
			lo := txnA.Tid
			if txnB.Tid < lo {
				lo = txnB.Tid
			}
			logf("not-equal: tid %v present in one storage but not the other", lo)
			return false, nil
		}
		if !CmpTxns(txnA, txnB) {
			logf("not-equal: transaction %v differs", txnA.Tid)
			return false, nil
		}
	}
}
