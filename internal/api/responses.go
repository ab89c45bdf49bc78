package api

type ErrorResponse struct {
	Error string `json:"error"`
}

// ViolationResponse carries a policy violation back to the client. Check
// identifies the failed constraint, Error the human-readable reason.
type ViolationResponse struct {
	Error string `json:"error"`
	Check string `json:"check"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
