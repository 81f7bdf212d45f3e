// Package httpx provides HTTP response utilities for the JSON API.
package httpx

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// Envelope is the success body returned by every JSON endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetail represents RFC7807 problem details plus the API's success flag.
type ProblemDetail struct {
	Success bool              `json:"success"`
	Type    string            `json:"type,omitempty"`
	Title   string            `json:"title"`
	Status  int               `json:"status"`
	Detail  string            `json:"detail,omitempty"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a 200 envelope. Slice payloads also carry a count.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, envelope(message, data))
}

// Created writes a 201 envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, envelope(message, data))
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	ProblemWithFields(w, status, title, detail, nil)
}

// ProblemWithFields sends a problem response carrying per-field errors.
func ProblemWithFields(w http.ResponseWriter, status int, title, detail string, fields map[string]string) {
	message := detail
	if message == "" {
		message = title
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:   title,
		Status:  status,
		Detail:  detail,
		Message: message,
		Errors:  fields,
	})
}

func envelope(message string, data any) Envelope {
	env := Envelope{Success: true, Message: message, Data: data}
	if data == nil {
		return env
	}
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		n := v.Len()
		env.Count = &n
		if v.IsNil() {
			env.Data = []any{}
		}
	}
	return env
}
