package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// sensitiveFields are field names that should be filtered from logs
var sensitiveFields = []string{
	"password",
	"password_hash",
	"token",
	"access_token",
	"authorization",
	"secret",
	"credential",
}

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())

			logRequest(logger, r, reqID)

			ww := &responseWriter{
				ResponseWriter: w,
				body:           &bytes.Buffer{},
			}

			next.ServeHTTP(ww, r)

			logResponse(logger, ww, time.Since(start), reqID)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the response body
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func logRequest(logger *slog.Logger, r *http.Request, reqID string) {
	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	logger.Info("incoming request",
		"request_id", reqID,
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", filterSensitiveBody(bodyBytes),
	)
}

func logResponse(logger *slog.Logger, rw *responseWriter, duration time.Duration, reqID string) {
	statusCode := rw.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	logLevel := slog.LevelInfo
	if statusCode >= 500 {
		logLevel = slog.LevelError
	} else if statusCode >= 400 {
		logLevel = slog.LevelWarn
	}

	logger.Log(nil, logLevel, "response",
		"request_id", reqID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"response_size", rw.body.Len(),
		"body", filterSensitiveBody(rw.body.Bytes()),
	)
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		if isSensitiveField(strings.ToLower(name)) {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}

	return filtered
}

func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var jsonData interface{}
	if err := json.Unmarshal(body, &jsonData); err != nil {
		bodyStr := string(body)
		if isSensitiveField(strings.ToLower(bodyStr)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return bodyStr
	}

	filteredBytes, err := json.Marshal(filterSensitiveJSON(jsonData))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}

	return string(filteredBytes)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{})
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				filtered[key] = "[FILTERED]"
			} else {
				filtered[key] = filterSensitiveJSON(value)
			}
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}

func isSensitiveField(s string) bool {
	for _, field := range sensitiveFields {
		if strings.Contains(s, field) {
			return true
		}
	}
	return false
}
