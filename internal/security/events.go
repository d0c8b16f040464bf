package security

import "log/slog"

// Security event kinds logged by the relay gate.
const (
	EventNonceInvalid         = "NONCE_INVALID"
	EventPermissionDenied     = "PERMISSION_DENIED"
	EventRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	EventFileValidationFailed = "FILE_VALIDATION_FAILED"
	EventInvalidFileType      = "INVALID_FILE_TYPE"
)

// EventLog records structured security events. Events carry enough context
// to audit an abuse attempt but are only emitted when verbose diagnostics
// are on; in normal operation the log stays quiet.
type EventLog struct {
	log     *slog.Logger
	verbose bool
}

func NewEventLog(log *slog.Logger, verbose bool) *EventLog {
	if log == nil {
		log = slog.Default()
	}
	return &EventLog{log: log, verbose: verbose}
}

// Record emits one security event. Extra attrs come in slog key/value form.
func (e *EventLog) Record(kind, message, actor, remoteAddr string, attrs ...any) {
	if !e.verbose {
		return
	}
	base := []any{"kind", kind, "actor", actor, "remoteAddr", remoteAddr}
	e.log.Warn("security event: "+message, append(base, attrs...)...)
}
