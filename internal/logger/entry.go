package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry collects metric fields (duration_ms, count, size, status) for one
// log line. The line is written through the context logger, so request and
// application ids are kept.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).WithDuration(elapsed).Info(ctx, "search done")
type Entry struct {
	fields Fields
	err    error
}

// With starts an Entry with the given fields.
func With(fields Fields) *Entry {
	return (&Entry{}).With(fields)
}

// With returns a copy of e with fields merged in; later keys win.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{fields: merged, err: e.err}
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithDuration records d in milliseconds.
func (e *Entry) WithDuration(d time.Duration) *Entry {
	return e.WithField(FieldDurationMs, d.Milliseconds())
}

func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

func (e *Entry) WithStatus(status string) *Entry {
	return e.WithField(FieldStatus, status)
}

// WithError attaches err under logrus' "error" key.
func (e *Entry) WithError(err error) *Entry {
	out := e.With(nil)
	out.err = err
	return out
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.DebugLevel, format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.ErrorLevel, format, args...)
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	l := FromContext(ctx).WithFields(e.fields)
	if e.err != nil {
		l = l.WithError(e.err)
	}
	l.Logf(level, format, args...)
}
