// Package models defines the publication coordinator request shape.
package models

// PublicationRequest asks the coordinator to replay one HTTP call against a
// set of tenants.
type PublicationRequest struct {
	URL     string         `json:"url"`
	Method  string         `json:"method"`
	Payload map[string]any `json:"payload,omitempty"`
	Tenants []string       `json:"tenants"`
}

// PublicationResponse identifies the coordinator job tracking the fan-out.
type PublicationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}
