// Package logger provides the logrus formatter used by the backpack binaries.
//
// Lines look like
//
//	2022-10-14 10:31:02.117 [INFO] [skyline] state = STREAMING stream=front-door
//
// The bracketed module is taken from the "component" field of the entry, or
// from ModuleName when the entry has none.
package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultTimestampFormat is a millisecond precision local timestamp
const DefaultTimestampFormat = "2006-01-02 15:04:05.000"

// ComponentKey is the field promoted to the module position of a line
const ComponentKey = "component"

// TextFormatter renders entries as
// "<timestamp> [LEVEL] [module] message key=value ...".
type TextFormatter struct {
	// Disable timestamp logging. useful when output is redirected to a
	// logging system that already adds timestamps, like journald
	DisableTimestamp bool

	// Timestamp layout, DefaultTimestampFormat if empty
	TimestampFormat string

	// Fields are sorted by key unless DisableSorting is set
	DisableSorting bool

	// Wrap empty values in quotes
	QuoteEmptyFields bool

	// The name of the module printed when the entry has no component field
	ModuleName string
}

// Format renders a single log entry.
// It is meant to be called from github.com/sirupsen/logrus.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	module := f.ModuleName
	keys := make([]string, 0, len(entry.Data))
	for k, v := range entry.Data {
		if k == ComponentKey {
			module = fmt.Sprint(v)
			continue
		}
		keys = append(keys, k)
	}
	if !f.DisableSorting {
		sort.Strings(keys)
	}

	if !f.DisableTimestamp {
		layout := f.TimestampFormat
		if layout == "" {
			layout = DefaultTimestampFormat
		}
		b.WriteString(entry.Time.Format(layout))
		b.WriteByte(' ')
	}

	b.WriteByte('[')
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")

	if module != "" {
		b.WriteByte('[')
		b.WriteString(module)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)
	for i, key := range keys {
		if i > 0 || entry.Message != "" {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		f.appendValue(b, entry.Data[key])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *TextFormatter) needsQuoting(text string) bool {
	if len(text) == 0 {
		return f.QuoteEmptyFields
	}
	for _, ch := range text {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '.' || ch == '_' || ch == '/' || ch == ':') {
			return true
		}
	}
	return false
}

func (f *TextFormatter) appendValue(b *bytes.Buffer, value interface{}) {
	var text string
	switch value := value.(type) {
	case string:
		text = value
	case error:
		text = value.Error()
	case fmt.Stringer:
		text = value.String()
	default:
		fmt.Fprint(b, value)
		return
	}
	if f.needsQuoting(text) {
		fmt.Fprintf(b, "%q", text)
		return
	}
	b.WriteString(text)
}
