/*
Package ohist serializes, verifies and replays the append-only transaction
history of an object database.

We implement:

1. A streaming, binary-safe dump format for transactions and their object
revisions, with content deduplication via back-references.

2. A dump reader that parses the format back lazily, validating sizes and
content digests as it goes.

3. A restore engine that replays parsed transactions into a target storage
with atomic per-transaction semantics, preserving original transaction ids.

4. A resolver that turns human time expressions ("3 weeks ago", "noon
yesterday", "2018-01-01T10:30:00Z") into exact transaction id ranges.

# Dump format

Object data is output as raw binary and everything else is text, so a dump
can be inspected with ordinary tools yet restored bit-for-bit:

	txn <tid> <status|quote>
	user <user|quote>
	description <description|quote>
	extension <extension|quote>
	obj <oid> (delete | from <tid> | <size> <hashfunc>:<hash> (-|LF <raw-content>)) LF
	obj ...
	...
	LF
	txn ...

quote is Go-style double-quoted escaping, so embedded newlines and control
bytes round-trip exactly. hashfunc is one of the registered hash functions
(sha1 by default, see RegisterHash). A `-` instead of content means the dump
was taken in hash-only mode; such dumps verify but do not restore.

# Transaction ids and time

A Tid is both a total commit order key and a packed point in time: the high
32 bits encode the minute (year, month, day, hour, minute), the low 32 bits
the fraction of that minute in units of TidResolution (≈14 ns). TidAtTime
and Tid.Time convert between the two, and TidClock hands out strictly
increasing tids even when wall-clock instants collide.

# Storage

The package never touches a concrete database. Dumping consumes a
TxnIterator, restoring drives the Storage capability (begin / store /
commit / abort plus revision loads), and concrete backends plug in through
RegisterDriver. A transient in-memory implementation is provided for tests
and as a reference.
*/
package ohist
