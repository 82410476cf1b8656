// Package secret wraps sensitive values (API keys, tokens) so that they
// never leak into logs, error messages, or %v-style formatting by accident.
package secret

// String holds a sensitive value. Its zero value is an empty secret.
// String() and GoString() print a fixed placeholder for any non-empty
// value and an empty string for an empty one; the raw value
// is reachable only through Reveal(), which callers should use at the
// single point where the value must cross a trust boundary (e.g. setting
// an HTTP Authorization header).
type String struct {
	value string
}

// New wraps a raw value as a secret.
func New(value string) String {
	return String{value: value}
}

// Reveal returns the raw underlying value.
func (s String) Reveal() string {
	return s.value
}

// Empty reports whether no value was set.
func (s String) Empty() bool {
	return s.value == ""
}

// String implements fmt.Stringer, redacting the value.
func (s String) String() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer so %#v also redacts.
func (s String) GoString() string {
	return s.String()
}

// MarshalJSON redacts the value so secrets never round-trip into stored
// config snapshots or debug dumps.
func (s String) MarshalJSON() ([]byte, error) {
	if s.value == "" {
		return []byte(`""`), nil
	}
	return []byte(`"[REDACTED]"`), nil
}
