package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// inbound ids are echoed only when they look like an id, so arbitrary
// client text never reaches the logs
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,64}$`)

// RequestID tags the request, the response and the request logger with an
// id, reusing a well-formed inbound X-Request-Id.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !requestIDPattern.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
