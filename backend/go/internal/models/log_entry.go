package models

// LogEntry is the shared shape of a structured log record.
// The request middleware emits one per handled request.
type LogEntry struct {
	// ServiceName is the binary that produced the entry, e.g. "chatbot".
	ServiceName string `json:"service_name"`

	// RequestID ties the log lines of one request together.
	RequestID string `json:"request_id,omitempty"`

	// SessionID is the chat session cookie, when present.
	SessionID string `json:"session_id,omitempty"`

	RequestInfo *RequestInfo `json:"request_info,omitempty"`

	// Error is set for records at level error or above.
	Error *ErrorInfo `json:"error,omitempty"`
}

// RequestInfo describes the HTTP request a record belongs to.
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Status     int    `json:"status"`
	LatencyMS  int64  `json:"latency_ms"`
}

// ErrorInfo is the structured form of an error.
type ErrorInfo struct {
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"` // apperrors kind, e.g. "upstream"
	StatusCode int    `json:"status_code,omitempty"`
}

// Fields flattens the entry for logrus.
func (e LogEntry) Fields() map[string]interface{} {
	f := map[string]interface{}{"service_name": e.ServiceName}
	if e.RequestID != "" {
		f["request_id"] = e.RequestID
	}
	if e.SessionID != "" {
		f["session_id"] = e.SessionID
	}
	if e.RequestInfo != nil {
		f["method"] = e.RequestInfo.Method
		f["path"] = e.RequestInfo.Path
		f["remote_addr"] = e.RequestInfo.RemoteAddr
		f["user_agent"] = e.RequestInfo.UserAgent
		f["status"] = e.RequestInfo.Status
		f["latency_ms"] = e.RequestInfo.LatencyMS
	}
	if e.Error != nil {
		f["error"] = e.Error.Message
		if e.Error.Kind != "" {
			f["error_kind"] = e.Error.Kind
		}
	}
	return f
}
