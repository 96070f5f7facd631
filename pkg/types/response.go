package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ErrorMarker stands in for a field whose reference could not be resolved.
// It is part of a successful payload, not a request failure.
type ErrorMarker struct {
	Error string `json:"error"`
}
