package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// SuccessResponse is the envelope for successful API calls
type SuccessResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// Metadata describes how an analytics response was produced
type Metadata struct {
	Timestamp    time.Time         `json:"timestamp"`
	ResponseTime string            `json:"responseTime"`
	Cached       bool              `json:"cached"`
	Parameters   map[string]string `json:"parameters"`
}

// ErrorResponse is the envelope for failed API calls
type ErrorResponse struct {
	Error     domain.ErrorCode `json:"error"`
	Message   string           `json:"message"`
	Details   interface{}      `json:"details,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}, metadata *Metadata) {
	writeJSON(w, statusCode, SuccessResponse{Success: true, Data: data, Metadata: metadata})
}

// writeError maps err to its status code. Upstream and internal failures
// get a generic message so store details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	resp := ErrorResponse{
		Error:     domain.CodeOf(err),
		Timestamp: time.Now().UTC(),
	}

	var validationErr *domain.ValidationError
	var domainErr *domain.DomainError
	switch {
	case errors.As(err, &validationErr):
		resp.Message = "Request validation failed"
		resp.Details = validationErr.Problems
	case resp.Error == domain.ErrCodeUpstream:
		resp.Message = "Failed to load asset records"
	case resp.Error == domain.ErrCodeComputation:
		resp.Message = "Failed to compute analytics"
	case errors.As(err, &domainErr):
		resp.Message = domainErr.Message
	default:
		resp.Message = "Internal server error"
	}

	writeJSON(w, status, resp)
}
