package ohist

import "strconv"

// quote renders raw bytes as a Go-style double-quoted string: printable text
// stays readable, control bytes and invalid UTF-8 become \-escapes, so any
// byte sequence survives a line-oriented text format.
func quote(b []byte) string {
	return strconv.Quote(string(b))
}

// unquote is the inverse of quote.
func unquote(s string) ([]byte, error) {
	v, err := strconv.Unquote(s)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}
