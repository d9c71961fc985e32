package ohist

import (
	"strings"
	"testing"
)

func TestAnalyze(t *testing.T) {
	stor := fixtureStorage(t)
	rep, err := Analyze(stor.Iterate(EntireHistory))
	if err != nil {
		t.Fatal(err)
	}

	deepEqual(t, rep.TidMin, tidA)
	deepEqual(t, rep.TidMax, tidB)
	deepEqual(t, rep.Txns, 2)
	deepEqual(t, rep.Records, 4)
	deepEqual(t, rep.DataRecords, 3)
	deepEqual(t, rep.CopyRecords, 0)
	deepEqual(t, rep.DeleteRecords, 1)
	deepEqual(t, rep.DataBytes, int64(5+6+12))

	deepEqual(t, rep.Objects[0], &ObjectStats{Revisions: 2, Bytes: 17})
	deepEqual(t, rep.Objects[1], &ObjectStats{Revisions: 1, Bytes: 6})
	deepEqual(t, rep.Objects[2], &ObjectStats{Deleted: true})
}

func TestAnalyzeDump(t *testing.T) {
	// A parsed dump stream feeds Analyze just like a storage iterator, even
	// a hash-only one (declared sizes count).
	var buf strings.Builder
	err := Dump(&buf, fixtureStorage(t).Iterate(EntireHistory), DumpOptions{HashOnly: true})
	if err != nil {
		t.Fatal(err)
	}

	rep, err := Analyze(NewDumpReader(strings.NewReader(buf.String()), "test"))
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, rep.Txns, 2)
	deepEqual(t, rep.DataBytes, int64(23))
}

func TestAnalyzeCopies(t *testing.T) {
	txns := []*Transaction{
		{TxnInfo: TxnInfo{Tid: tidA, Status: TxnComplete},
			Objects: []ObjectRecord{data(0, "hello")}},
		{TxnInfo: TxnInfo{Tid: tidB, Status: TxnComplete},
			Objects: []ObjectRecord{&ObjectCopy{Oid: 0, From: tidA}}},
	}
	rep, err := Analyze(&sliceIterator{txns})
	if err != nil {
		t.Fatal(err)
	}
	deepEqual(t, rep.CopyRecords, 1)
	deepEqual(t, rep.Objects[0], &ObjectStats{Revisions: 1, Copies: 1, Bytes: 5})
}

func TestReportWriteText(t *testing.T) {
	rep, err := Analyze(fixtureStorage(t).Iterate(EntireHistory))
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := rep.WriteText(&buf, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		tidA.String() + ".." + tidB.String(),
		"Processed 4 records in 2 transactions",
		"0000000000000000",
		"(deleted)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}

	// topN limits the object table.
	buf.Reset()
	if err := rep.WriteText(&buf, 1); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "0000000000000001") {
		t.Errorf("topN=1 report still lists every object:\n%s", buf.String())
	}
}

func TestReportWriteTextEmpty(t *testing.T) {
	rep, err := Analyze(&sliceIterator{})
	if err != nil {
		t.Fatal(err)
	}
	var buf strings.Builder
	if err := rep.WriteText(&buf, 0); err != nil {
		t.Fatal(err)
	}
	deepEqual(t, buf.String(), "No transactions processed\n")
}
