package observability

import (
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/internal/utilities"
)

func NewStructuredLogger(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&structuredLogger{logger})
}

type structuredLogger struct {
	Logger *logrus.Logger
}

func (l *structuredLogger) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	entry := &LogEntry{Entry: logrus.NewEntry(l.Logger)}
	logFields := logrus.Fields{
		"component":   "api",
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": utilities.GetIPAddress(r),
		"referer":     r.Referer(),
	}

	if reqID := utilities.GetRequestID(r.Context()); reqID != "" {
		logFields["request_id"] = reqID
	}

	entry.Entry = entry.Entry.WithFields(logFields)
	entry.Entry.Debug("request started")
	return entry
}

// LogEntry is the logrus entry attached to a request.
type LogEntry struct {
	Entry *logrus.Entry
}

func (e *LogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	fields := logrus.Fields{
		"status":   status,
		"duration": elapsed.Nanoseconds(),
	}

	if errorCode := header.Get("x-siwe-error-code"); errorCode != "" {
		fields["error_code"] = errorCode
	}

	e.Entry.WithFields(fields).Info("request completed")
}

func (e *LogEntry) Panic(v interface{}, stack []byte) {
	e.Entry.WithFields(logrus.Fields{
		"stack": string(stack),
		"panic": fmt.Sprintf("%+v", v),
	}).Error("request panicked")
}

// GetLogEntry returns the per-request entry, or one from the standard logger
// outside of the request logger.
func GetLogEntry(r *http.Request) *LogEntry {
	l, _ := chimiddleware.GetLogEntry(r).(*LogEntry)
	if l == nil {
		return &LogEntry{Entry: logrus.NewEntry(logrus.StandardLogger())}
	}
	return l
}

func LogEntrySetField(r *http.Request, key string, value interface{}) {
	if l, ok := r.Context().Value(chimiddleware.LogEntryCtxKey).(*LogEntry); ok {
		l.Entry = l.Entry.WithField(key, value)
	}
}

func LogEntrySetFields(r *http.Request, fields logrus.Fields) {
	if l, ok := r.Context().Value(chimiddleware.LogEntryCtxKey).(*LogEntry); ok {
		l.Entry = l.Entry.WithFields(fields)
	}
}
