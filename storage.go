package ohist

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Storage is the abstract capability set the package needs from a concrete
// backend: iterate committed transactions in tid order, load a revision's
// bytes by object id, and append new transactions one commit at a time.
//
// Committed history is immutable; implementations only ever append. At most
// one commit may be open at a time, and a Storage is exclusively owned by
// one restore run for its duration; excluding concurrent writers is the
// caller's job.
type Storage interface {
	// LastTid returns the tid of the most recently committed transaction,
	// or 0 for an empty storage.
	LastTid() (Tid, error)

	// Iterate returns an iterator over committed transactions in r, in
	// strictly increasing tid order.
	Iterate(r TidRange) TxnIterator

	// LoadAt returns the object's payload bytes as of its latest revision
	// with tid <= at. It fails with ErrNoData if the object has no such
	// revision or is deleted by then.
	LoadAt(oid Oid, at Tid) ([]byte, error)

	// BeginCommit opens a new transaction. info.Tid must be greater than
	// LastTid; a zero info.Tid asks the storage to assign one at commit
	// time. Fails with ErrCommitInProgress if a commit is already open.
	BeginCommit(info *TxnInfo) error

	// StoreData records the object's payload for the open transaction.
	StoreData(oid Oid, data []byte) error

	// StoreDelete records the object's removal in the open transaction.
	StoreDelete(oid Oid) error

	// EndCommit atomically applies every record stored since BeginCommit
	// and returns the tid the transaction was committed under.
	EndCommit() (Tid, error)

	// AbortCommit discards the open transaction, leaving the storage as if
	// BeginCommit was never called.
	AbortCommit() error

	Close() error
}

// Driver opens a Storage from a URL. Concrete backends register themselves
// with RegisterDriver; the library itself only ships the transient mem://
// backend.
type Driver func(u *url.URL) (Storage, error)

var (
	driverMu sync.Mutex
	drivers  = map[string]Driver{}
)

// RegisterDriver makes a storage backend available to OpenStorage under the
// given URL scheme.
func RegisterDriver(scheme string, d Driver) {
	driverMu.Lock()
	defer driverMu.Unlock()
	if drivers[scheme] != nil {
		panic("ohist: storage driver already registered: " + scheme)
	}
	drivers[scheme] = d
}

// OpenStorage opens the storage a URL names, dispatching on its scheme.
// A URL without a scheme is treated as a file path ("file://...").
func OpenStorage(urlstr string) (Storage, error) {
	if !strings.Contains(urlstr, "://") {
		urlstr = "file://" + urlstr
	}
	u, err := url.Parse(urlstr)
	if err != nil {
		return nil, fmt.Errorf("invalid storage URL %q: %w", urlstr, err)
	}

	driverMu.Lock()
	d := drivers[u.Scheme]
	driverMu.Unlock()
	if d == nil {
		return nil, fmt.Errorf("no storage driver for scheme %q", u.Scheme)
	}
	return d(u)
}
