package ohist

import (
	"testing"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		raw    []byte
		quoted string
	}{
		{nil, `""`},
		{[]byte("hello"), `"hello"`},
		{[]byte("two\nlines"), `"two\nlines"`},
		{[]byte("tab\there"), `"tab\there"`},
		{[]byte(`say "hi"`), `"say \"hi\""`},
		{[]byte{0x00, 0xFF}, `"\x00\xff"`},
		{[]byte("héllo"), `"héllo"`},
	}
	for _, test := range tests {
		if got := quote(test.raw); got != test.quoted {
			t.Errorf("quote(%q) = %s, wanted %s", test.raw, got, test.quoted)
		}
		back, err := unquote(test.quoted)
		if err != nil {
			t.Errorf("unquote(%s) failed: %v", test.quoted, err)
			continue
		}
		deepEqual(t, back, test.raw)
	}
}

func TestUnquoteErrors(t *testing.T) {
	for _, s := range []string{``, `"`, `unquoted`, `"bad \q escape"`, `"trailing" junk`} {
		if v, err := unquote(s); err == nil {
			t.Errorf("unquote(%s) = %q, wanted error", s, v)
		}
	}
}

func TestQuoteSingleLine(t *testing.T) {
	// The dump format is line oriented; quoting must never emit a raw LF.
	for _, raw := range [][]byte{[]byte("a\nb"), []byte("\n"), []byte("\r\n")} {
		q := quote(raw)
		for i := 0; i < len(q); i++ {
			if q[i] == '\n' {
				t.Errorf("quote(%q) contains a raw newline: %s", raw, q)
			}
		}
	}
}
