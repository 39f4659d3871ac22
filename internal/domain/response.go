package domain

// ErrorResponse is the body of every error reply. Message is a fixed phrase,
// never the underlying error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of the health check.
type StatusResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}
