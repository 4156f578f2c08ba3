package handler

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform wrapper around every API response body.
type Envelope struct {
	Status  string  `json:"status"`
	Data    any     `json:"data"`
	Message *string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Status: "success", Data: data})
}

func writeSuccessMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Status: "success", Message: &message})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Status: "fail", Message: &message})
}
