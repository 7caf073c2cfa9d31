// Package response writes the API's JSON envelope.
//
// Every response carries a boolean "success" plus endpoint-specific keys:
//
//	response.Success(w, response.M{"order": order})
//	// → 200 {"success":true,"order":{...}}
//
//	response.Error(w, http.StatusNotFound, "order not found")
//	// → 404 {"success":false,"message":"order not found"}
package response

import (
	"encoding/json"
	"net/http"
)

// M is a response body fragment merged into the envelope.
type M map[string]interface{}

func write(w http.ResponseWriter, status int, success bool, body M) {
	out := M{"success": success}
	for k, v := range body {
		out[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(out) //nolint:errcheck
}

// Success sends a 200 with success=true and the given keys.
func Success(w http.ResponseWriter, body M) {
	write(w, http.StatusOK, true, body)
}

// Created sends a 201 with success=true and the given keys.
func Created(w http.ResponseWriter, body M) {
	write(w, http.StatusCreated, true, body)
}

// Error sends a failure envelope with a human-readable message.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, false, M{"message": message})
}

// ValidationFailed sends a 400 with field-level error map.
func ValidationFailed(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, false, M{
		"message": "Validation failed",
		"errors":  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not found"
	}
	Error(w, http.StatusNotFound, message)
}

// Internal sends a 500 without leaking the underlying error to the client.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}
