package ohist

import (
	"math/bits"
	"sync"
	"time"
)

// TidResolution is the time quantum of a tid. The low 32 bits of a tid count
// units of 60s/2^32 within the minute, so two instants closer than this pack
// to the same tid. (The value is truncated to whole nanoseconds here; the
// exact quantum is 60s/2^32 ≈ 13.97ns.)
const TidResolution = 60 * time.Second >> 32

const nanosPerMinute = 60 * 1e9

// TidAtTime packs an instant into a tid.
//
// The high 32 bits encode the UTC calendar minute as
// (((year-1900)*12 + month-1)*31 + day-1)*1440 + hour*60 + minute; the low
// 32 bits encode the position within the minute in TidResolution units.
// Instants before 1900 are not representable.
func TidAtTime(t time.Time) Tid {
	t = t.UTC()
	year, month, day := t.Date()
	if year < 1900 {
		panic("ohist: cannot pack time before 1900 into a tid")
	}
	days := (uint64(year-1900)*12+uint64(month-1))*31 + uint64(day-1)
	hi := days*1440 + uint64(t.Hour())*60 + uint64(t.Minute())

	nanos := uint64(t.Second())*1e9 + uint64(t.Nanosecond())
	mh, ml := bits.Mul64(nanos, 1<<32)
	lo, _ := bits.Div64(mh, ml, nanosPerMinute)

	return Tid(hi<<32 | lo)
}

// Time unpacks the instant a tid encodes, with TidResolution precision.
func (tid Tid) Time() time.Time {
	hi := uint64(tid) >> 32
	lo := uint64(tid) & 0xFFFF_FFFF

	min := int(hi % 60)
	hi /= 60
	hour := int(hi % 24)
	hi /= 24
	day := int(hi%31) + 1
	hi /= 31
	month := time.Month(hi%12) + 1
	year := int(hi/12) + 1900

	// nanos = round(lo * 60e9 / 2^32)
	mh, ml := bits.Mul64(lo, nanosPerMinute)
	sum, carry := bits.Add64(ml, 1<<31, 0)
	nanos := (mh+carry)<<32 | sum>>32

	return time.Date(year, month, day, hour, min, 0, int(nanos), time.UTC)
}

// TidClock issues strictly increasing tids from wall-clock instants.
//
// When two instants pack to the same tid (or time steps backwards), the low
// bits act as a sub-instant counter: the clock bumps past the previously
// issued tid and the counter effect vanishes as soon as the packed time
// component advances on its own.
type TidClock struct {
	mu   sync.Mutex
	last Tid
}

// Next returns a tid for t that is strictly greater than any tid this clock
// has returned before.
func (c *TidClock) Next(t time.Time) Tid {
	tid := TidAtTime(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	if tid <= c.last {
		tid = c.last + 1
	}
	c.last = tid
	return tid
}

// Observe tells the clock that tid is already taken, so that subsequent Next
// calls stay above it. Storages call this when loading existing history.
func (c *TidClock) Observe(tid Tid) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tid > c.last {
		c.last = tid
	}
}
