package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2022, 10, 14, 10, 31, 2, 117000000, time.UTC)
	cases := []struct {
		name   string
		f      TextFormatter
		level  logrus.Level
		msg    string
		fields logrus.Fields
		exp    string
	}{
		{
			name:  "plain",
			f:     TextFormatter{},
			level: logrus.InfoLevel,
			msg:   "state = STREAMING",
			exp:   "2022-10-14 10:31:02.117 [INFO] state = STREAMING\n",
		},
		{
			name:   "component and sorted fields",
			f:      TextFormatter{DisableTimestamp: true},
			level:  logrus.WarnLevel,
			msg:    "could not open pipeline",
			fields: logrus.Fields{"stream": "front-door", "component": "skyline", "fps": 15},
			exp:    "[WARNING] [skyline] could not open pipeline fps=15 stream=front-door\n",
		},
		{
			name:   "module name and quoting",
			f:      TextFormatter{DisableTimestamp: true, ModuleName: "demo", QuoteEmptyFields: true},
			level:  logrus.ErrorLevel,
			msg:    "refresh failed",
			fields: logrus.Fields{"err": errors.New("access denied"), "token": ""},
			exp:    "[ERROR] [demo] refresh failed err=\"access denied\" token=\"\"\n",
		},
		{
			name:   "custom layout without message",
			f:      TextFormatter{TimestampFormat: time.RFC3339},
			level:  logrus.DebugLevel,
			fields: logrus.Fields{"port": 8555},
			exp:    "2022-10-14T10:31:02Z [DEBUG] port=8555\n",
		},
	}
	for _, c := range cases {
		entry := &logrus.Entry{
			Logger:  logrus.New(),
			Data:    c.fields,
			Time:    ts,
			Level:   c.level,
			Message: c.msg,
		}
		if entry.Data == nil {
			entry.Data = logrus.Fields{}
		}
		out, err := c.f.Format(entry)
		if err != nil {
			t.Fatalf("case %q: unexpected error %s", c.name, err)
		}
		if string(out) != c.exp {
			t.Fatalf("case %q: expected %q, got %q", c.name, c.exp, string(out))
		}
	}
}
