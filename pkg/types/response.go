package types

// SuccessEnvelope wraps every successful payload.
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

// MessageResponse carries a human readable outcome, e.g. after email verification.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeletedResponse acknowledges a single-row delete.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// DeletedCountResponse reports how many rows a bulk delete removed.
type DeletedCountResponse struct {
	Deleted int64 `json:"deleted"`
}
