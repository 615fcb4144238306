package middleware

import (
	"net/http"

	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/pkg/response"
)

// RequireUserType allows the request through only when the token's user type
// is one of allowed.
func RequireUserType(allowed ...entity.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userType, ok := GetUserTypeFromContext(r.Context())
			if !ok || userType == "" {
				response.Unauthorized(w, "User type not found")
				return
			}

			for _, a := range allowed {
				if userType == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireDoctor is a convenience middleware for doctor-only endpoints
func RequireDoctor(next http.Handler) http.Handler {
	return RequireUserType(entity.UserTypeDoctor)(next)
}
