package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/response"
)

// RequireCapability checks the caller may perform action on resource
func RequireCapability(authorizer user.Authorizer, action user.Action, resource user.Resource) func(http.Handler) http.Handler {
	capability := user.Capability{Action: action, Resource: resource}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authorizer.Can(r.Context(), action, resource) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", capability))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
