package ohist

import "sort"

// TxnStatus is the status byte of a transaction.
type TxnStatus byte

const (
	// TxnComplete is a regular committed transaction.
	TxnComplete TxnStatus = ' '
	// TxnPacked marks a transaction that can no longer be undone.
	TxnPacked TxnStatus = 'p'
)

func (s TxnStatus) Valid() bool {
	return s == TxnComplete || s == TxnPacked
}

// TxnInfo holds the metadata of a transaction: everything except the object
// records it carries.
type TxnInfo struct {
	Tid         Tid
	Status      TxnStatus
	User        []byte
	Description []byte
	Extension   []byte
}

// Transaction is one committed transaction of a database history: metadata
// plus the ordered records of objects it changed. Transactions are immutable
// once committed; the package only ever reads or appends them.
type Transaction struct {
	TxnInfo
	Objects []ObjectRecord
}

// ObjectRecord is one of three variants describing what happened to an
// object in a transaction: ObjectData, ObjectCopy or ObjectDelete.
type ObjectRecord interface {
	ObjectId() Oid

	objectRecord() // seals the variant set
}

// ObjectData carries the full byte payload of an object's state at this
// revision, with a digest and length for integrity verification.
//
// Data == nil means the record comes from a hash-only dump: Size and Hash
// are valid but the payload itself was not captured.
type ObjectData struct {
	Oid      Oid
	Size     int64
	HashFunc string
	Hash     []byte
	Data     []byte
}

// HashOnly reports whether the record carries only a digest, without the
// payload bytes.
func (o *ObjectData) HashOnly() bool { return o.Data == nil }

// ObjectCopy states that the object's bytes at this revision are identical
// to its revision as of the earlier transaction From. It deduplicates
// unchanged content; From must be less than the enclosing transaction's tid.
type ObjectCopy struct {
	Oid  Oid
	From Tid
}

// ObjectDelete states that the object ceases to exist as of this revision.
type ObjectDelete struct {
	Oid Oid
}

func (o *ObjectData) ObjectId() Oid   { return o.Oid }
func (o *ObjectCopy) ObjectId() Oid   { return o.Oid }
func (o *ObjectDelete) ObjectId() Oid { return o.Oid }

func (o *ObjectData) objectRecord()   {}
func (o *ObjectCopy) objectRecord()   {}
func (o *ObjectDelete) objectRecord() {}

// sortObjects orders records canonically, by ascending oid.
func sortObjects(objs []ObjectRecord) {
	sort.Slice(objs, func(i, j int) bool {
		return objs[i].ObjectId() < objs[j].ObjectId()
	})
}
