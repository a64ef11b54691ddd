package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"mensaje"`
	Error   string `json:"error,omitempty"`
	Details string `json:"detalles,omitempty"`
}

type MessageResponse struct {
	Message string `json:"mensaje"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Backend string `json:"backend"`
}
