// Package api holds the shared response envelopes referenced by
// handlers and their swagger annotations.
package api

type ErrorResponse struct {
	Error string `json:"error" example:"Class not found"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Booking cancelled."`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
