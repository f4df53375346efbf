package main

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIError is the only error shape clients ever see. Internal detail
// (driver errors, stack traces) never leaves the process.
type APIError struct {
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{Code: code, Message: message})
}
