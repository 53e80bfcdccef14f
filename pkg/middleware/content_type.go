package middleware

import (
	"net/http"
	"strings"

	apperrors "courts/pkg/errors"
	httputil "courts/pkg/http"
	"courts/pkg/logger"
)

// Browsers posting a JSON string without headers send text/plain, so it is
// accepted alongside application/json and decoded as JSON downstream.
var acceptedContentTypes = map[string]bool{
	"application/json": true,
	"text/plain":       true,
}

func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r.Method) {
				contentType := extractContentType(r.Header.Get("Content-Type"))

				if !acceptedContentTypes[contentType] {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFromContext(r.Context()),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					appErr := apperrors.New(apperrors.CodeInvalidInput, "Content-Type must be application/json or text/plain", http.StatusUnsupportedMediaType)
					httputil.WriteRawError(w, appErr)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	mediaType, _, _ := strings.Cut(header, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
