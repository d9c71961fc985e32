package ohist

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"
)

func init() {
	RegisterDriver("mem", func(u *url.URL) (Storage, error) {
		return NewMemStorage(), nil
	})
}

// MemStorage is a transient in-memory Storage implementation, intended for
// tests and as a reference for backend authors. It keeps whole history in
// RAM and enforces the Storage contract strictly: append-only commits in
// increasing tid order, one open commit at a time, all-or-nothing apply.
type MemStorage struct {
	mu     sync.Mutex
	txns   []*Transaction
	revs   map[Oid][]memRev
	open   *memCommit
	clock  TidClock
	now    func() time.Time
	closed bool
}

type memRev struct {
	tid  Tid
	data []byte // nil means deleted as of this revision
}

type memCommit struct {
	info TxnInfo
	objs []ObjectRecord
	seen map[Oid]bool
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		revs: make(map[Oid][]memRev),
		now:  time.Now,
	}
}

// SetClock replaces the wall clock used to assign tids to commits that
// do not bring their own. Tests inject a deterministic clock here.
func (s *MemStorage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemStorage) LastTid() (Tid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("storage closed")
	}
	if n := len(s.txns); n > 0 {
		return s.txns[n-1].Tid, nil
	}
	return 0, nil
}

func (s *MemStorage) Iterate(r TidRange) TxnIterator {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Committed transactions are immutable, so the iterator can hold a
	// snapshot of the slice without copying the transactions themselves.
	i := sort.Search(len(s.txns), func(i int) bool { return s.txns[i].Tid >= r.Lo })
	j := sort.Search(len(s.txns), func(j int) bool { return s.txns[j].Tid >= r.Hi })
	if j < i {
		j = i
	}
	return &memIterator{txns: s.txns[i:j]}
}

func (s *MemStorage) LoadAt(oid Oid, at Tid) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}

	revs := s.revs[oid]
	for i := len(revs) - 1; i >= 0; i-- {
		if revs[i].tid <= at {
			if revs[i].data == nil {
				return nil, fmt.Errorf("obj %v at %v: %w (deleted)", oid, at, ErrNoData)
			}
			return revs[i].data, nil
		}
	}
	return nil, fmt.Errorf("obj %v at %v: %w", oid, at, ErrNoData)
}

func (s *MemStorage) BeginCommit(info *TxnInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	if s.open != nil {
		return ErrCommitInProgress
	}
	if info.Tid != 0 {
		if n := len(s.txns); n > 0 && info.Tid <= s.txns[n-1].Tid {
			return fmt.Errorf("commit %v: %w (head is %v)", info.Tid, ErrOutOfOrderRestore, s.txns[n-1].Tid)
		}
	}
	if !info.Status.Valid() {
		return fmt.Errorf("commit %v: invalid status %q", info.Tid, byte(info.Status))
	}

	s.open = &memCommit{info: *info, seen: make(map[Oid]bool)}
	return nil
}

func (s *MemStorage) StoreData(oid Oid, data []byte) error {
	return s.store(oid, &ObjectData{Oid: oid, Data: data, Size: int64(len(data))})
}

func (s *MemStorage) StoreDelete(oid Oid) error {
	return s.store(oid, &ObjectDelete{Oid: oid})
}

func (s *MemStorage) store(oid Oid, obj ObjectRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return fmt.Errorf("no commit in progress")
	}
	if s.open.seen[oid] {
		return fmt.Errorf("commit %v: duplicate obj %v", s.open.info.Tid, oid)
	}
	s.open.seen[oid] = true
	s.open.objs = append(s.open.objs, obj)
	return nil
}

func (s *MemStorage) EndCommit() (Tid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == nil {
		return 0, fmt.Errorf("no commit in progress")
	}
	c := s.open
	s.open = nil

	tid := c.info.Tid
	if tid == 0 {
		tid = s.clock.Next(s.now())
	} else {
		s.clock.Observe(tid)
	}
	c.info.Tid = tid

	sortObjects(c.objs)
	for _, obj := range c.objs {
		switch o := obj.(type) {
		case *ObjectData:
			s.revs[o.Oid] = append(s.revs[o.Oid], memRev{tid, o.Data})
		case *ObjectDelete:
			s.revs[o.Oid] = append(s.revs[o.Oid], memRev{tid, nil})
		}
	}
	s.txns = append(s.txns, &Transaction{TxnInfo: c.info, Objects: c.objs})
	return tid, nil
}

func (s *MemStorage) AbortCommit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = nil
	return nil
}

func (s *MemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = nil
	s.closed = true
	return nil
}

type memIterator struct {
	txns []*Transaction
}

func (it *memIterator) NextTxn() (*Transaction, error) {
	if len(it.txns) == 0 {
		return nil, io.EOF
	}
	txn := it.txns[0]
	it.txns = it.txns[1:]
	return txn, nil
}
