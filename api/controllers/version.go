package controllers

import (
	"net/http"

	"github.com/merchantiq/pricewise-backend/api/responses"
)

// Version reports the platform version stamped onto generated reports.
func Version(platformVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"version": platformVersion})
	}
}
