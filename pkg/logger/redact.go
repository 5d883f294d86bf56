package logger

import (
	"fmt"
	"strings"
)

// Defaults used when no redaction settings are configured.
const (
	DefaultRedaction = "***"
	DefaultSeparator = ";"
)

// DefaultPIIFields are the personal data fields redacted from audit logs.
var DefaultPIIFields = []string{"name", "email", "phone", "ssn", "password"}

// Redactor hides the values of selected fields in messages made of
// "field=value" segments joined by a separator:
//
//	name=Bob;email=a@b.com;age=5;  →  name=***;email=***;age=5;
//
// A Redactor is immutable and safe for concurrent use. The zero value and nil
// pass messages through unchanged.
type Redactor struct {
	fields    map[string]struct{}
	order     []string
	marker    string
	separator string
}

// NewRedactor validates the redaction settings. Field names must be non-empty
// and may contain neither "=" nor the separator.
func NewRedactor(fields []string, marker, separator string) (*Redactor, error) {
	if separator == "" {
		return nil, fmt.Errorf("redactor: empty separator")
	}
	r := &Redactor{
		fields:    make(map[string]struct{}, len(fields)),
		marker:    marker,
		separator: separator,
	}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || strings.Contains(f, "=") || strings.Contains(f, separator) {
			return nil, fmt.Errorf("redactor: invalid field name %q", f)
		}
		if _, dup := r.fields[f]; dup {
			continue
		}
		r.fields[f] = struct{}{}
		r.order = append(r.order, f)
	}
	return r, nil
}

// MustRedactor is NewRedactor for settings known at compile time.
func MustRedactor(fields []string, marker, separator string) *Redactor {
	r, err := NewRedactor(fields, marker, separator)
	if err != nil {
		panic(err)
	}
	return r
}

// Fields returns the redacted field names in configuration order.
func (r *Redactor) Fields() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Has reports whether field is redacted.
func (r *Redactor) Has(field string) bool {
	if r == nil {
		return false
	}
	_, ok := r.fields[field]
	return ok
}

// Redact returns message with the selected values replaced by the marker.
func (r *Redactor) Redact(message string) string {
	out, _ := r.RedactCount(message)
	return out
}

// RedactCount is Redact that also reports how many values were replaced.
// Segment order and count are preserved, including empty trailing segments.
func (r *Redactor) RedactCount(message string) (string, int) {
	if r == nil || len(r.fields) == 0 || message == "" {
		return message, 0
	}

	segments := strings.Split(message, r.separator)
	n := 0
	for i, seg := range segments {
		name, _, ok := strings.Cut(seg, "=")
		if !ok || !r.Has(strings.TrimSpace(name)) {
			continue
		}
		segments[i] = name + "=" + r.marker
		n++
	}
	if n == 0 {
		return message, 0
	}
	return strings.Join(segments, r.separator), n
}

// Format renders key/value pairs as "k1=v1;k2=v2;" using the separator. A
// trailing key without a value is dropped.
func (r *Redactor) Format(kv ...string) string {
	sep := DefaultSeparator
	if r != nil {
		sep = r.separator
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(kv[i])
		b.WriteByte('=')
		b.WriteString(kv[i+1])
		b.WriteString(sep)
	}
	return b.String()
}
