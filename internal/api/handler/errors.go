package handler

// errorBody documents the error envelope rendered by the HTTP error handler.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
