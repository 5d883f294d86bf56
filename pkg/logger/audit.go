package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SourceFieldName is the field carrying the audit source in every entry.
const SourceFieldName = "source"

// AuditLogger writes audit entries for one named source. Messages pass through
// a Redactor before reaching the sink, and structured fields whose key is a
// redacted field have their value replaced.
type AuditLogger struct {
	log      zerolog.Logger
	redactor *Redactor
}

// NewAuditLogger binds base to source. A nil redactor disables redaction.
func NewAuditLogger(base zerolog.Logger, source string, redactor *Redactor) *AuditLogger {
	return &AuditLogger{
		log:      base.With().Str(SourceFieldName, source).Logger(),
		redactor: redactor,
	}
}

func (a *AuditLogger) Info(msg string, fields ...map[string]any) {
	a.Log(zerolog.InfoLevel, msg, fields...)
}

func (a *AuditLogger) Warn(msg string, fields ...map[string]any) {
	a.Log(zerolog.WarnLevel, msg, fields...)
}

func (a *AuditLogger) Error(msg string, fields ...map[string]any) {
	a.Log(zerolog.ErrorLevel, msg, fields...)
}

// Log emits msg at level. Redaction cannot fail here; settings are checked
// when the Redactor is built.
func (a *AuditLogger) Log(level zerolog.Level, msg string, fields ...map[string]any) {
	ev := a.log.WithLevel(level)
	if ev == nil {
		return
	}
	for _, f := range fields {
		for k, v := range f {
			if a.redactor.Has(k) {
				v = a.redactor.marker
			}
			ev = ev.Interface(k, v)
		}
	}
	ev.Msg(a.redactor.Redact(msg))
}

// Event formats key/value pairs into a "k=v;" message and logs it at level.
func (a *AuditLogger) Event(level zerolog.Level, kv ...string) {
	a.Log(level, a.redactor.Format(kv...))
}

// NewConsoleWriter renders entries on one line as
//
//	<timestamp> <source> <LEVEL> <message> <fields...>
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		TimeFormat:    time.RFC3339,
		PartsOrder:    []string{zerolog.TimestampFieldName, SourceFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude: []string{SourceFieldName},
		FormatLevel: func(i any) string {
			s, _ := i.(string)
			return strings.ToUpper(s)
		},
	}
}
