package ohist

import (
	"fmt"
	"io"
	"sort"

	"github.com/c2h5oh/datasize"
)

// Report accumulates size statistics over a range of history: how many
// transactions and records were seen, how the bytes split across record
// kinds, and how much each object accounts for.
type Report struct {
	TidMin, TidMax Tid // first and last scanned transaction

	Txns          int
	Records       int
	DataRecords   int
	CopyRecords   int
	DeleteRecords int
	DataBytes     int64

	Objects map[Oid]*ObjectStats
}

// ObjectStats is the per-object slice of a Report.
type ObjectStats struct {
	Revisions int
	Copies    int
	Deleted   bool
	Bytes     int64
}

// Analyze folds over the transactions it produces and accumulates size
// statistics. Hash-only data records contribute their declared sizes.
func Analyze(it TxnIterator) (*Report, error) {
	rep := &Report{Objects: make(map[Oid]*ObjectStats)}
	for {
		txn, err := it.NextTxn()
		if err == io.EOF {
			return rep, nil
		} else if err != nil {
			return rep, err
		}
		rep.addTxn(txn)
	}
}

func (rep *Report) addTxn(txn *Transaction) {
	if rep.Txns == 0 {
		rep.TidMin = txn.Tid
	}
	rep.TidMax = txn.Tid
	rep.Txns++

	for _, obj := range txn.Objects {
		rep.Records++
		st := rep.Objects[obj.ObjectId()]
		if st == nil {
			st = &ObjectStats{}
			rep.Objects[obj.ObjectId()] = st
		}

		switch o := obj.(type) {
		case *ObjectData:
			rep.DataRecords++
			rep.DataBytes += o.Size
			st.Revisions++
			st.Bytes += o.Size
			st.Deleted = false
		case *ObjectCopy:
			rep.CopyRecords++
			st.Copies++
			st.Deleted = false
		case *ObjectDelete:
			rep.DeleteRecords++
			st.Deleted = true
		default:
			panic(fmt.Sprintf("invalid object record %T", obj))
		}
	}
}

// WriteText renders the report for humans. topN > 0 limits the per-object
// table to the N largest objects by accumulated bytes.
func (rep *Report) WriteText(w io.Writer, topN int) error {
	if rep.Txns == 0 {
		_, err := fmt.Fprintln(w, "No transactions processed")
		return err
	}

	_, err := fmt.Fprintf(w, "# %v..%v\n", rep.TidMin, rep.TidMax)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Processed %d records in %d transactions\n", rep.Records, rep.Txns)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Data %s in %d records (avg %.2f bytes), %d copies, %d deletions\n",
		datasize.ByteSize(rep.DataBytes).HumanReadable(),
		rep.DataRecords, avg(rep.DataBytes, rep.DataRecords),
		rep.CopyRecords, rep.DeleteRecords)
	if err != nil {
		return err
	}

	oids := make([]Oid, 0, len(rep.Objects))
	for oid := range rep.Objects {
		oids = append(oids, oid)
	}
	sort.Slice(oids, func(i, j int) bool {
		a, b := rep.Objects[oids[i]], rep.Objects[oids[j]]
		if a.Bytes != b.Bytes {
			return a.Bytes > b.Bytes
		}
		return oids[i] < oids[j]
	})
	if topN > 0 && len(oids) > topN {
		oids = oids[:topN]
	}

	_, err = fmt.Fprintf(w, "%-16s %9s %10s %6s %7s\n", "Oid", "Revisions", "Bytes", "Copies", "AvgSize")
	if err != nil {
		return err
	}
	for _, oid := range oids {
		st := rep.Objects[oid]
		mark := ""
		if st.Deleted {
			mark = " (deleted)"
		}
		_, err = fmt.Fprintf(w, "%v %9d %10s %6d %7.2f%s\n",
			oid, st.Revisions, datasize.ByteSize(st.Bytes).HumanReadable(),
			st.Copies, avg(st.Bytes, st.Revisions), mark)
		if err != nil {
			return err
		}
	}
	return nil
}

func avg(total int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}
