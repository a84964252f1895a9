package transport

import "encoding/json"

// Envelope wraps every API response, success or error.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  any    `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

// ErrorMeta lets a client quote the request id of a failed call.
type ErrorMeta struct {
	RequestID string `json:"request_id,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewSuccess(data any, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewMessage is a success envelope holding only a confirmation message.
func NewMessage(message string) Envelope {
	return NewSuccess(MessageResponse{Message: message}, nil)
}

// NewError builds an error envelope. A meta without a request id is dropped.
func NewError(code string, message any, meta *ErrorMeta) Envelope {
	env := Envelope{
		Status: "error",
		Code:   code,
		Error:  message,
	}
	if meta != nil && meta.RequestID != "" {
		env.Meta = meta
	}
	return env
}

// Bytes marshals the envelope, falling back to a bare error object.
func (e Envelope) Bytes() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"status":"error","code":"INTERNAL"}`)
	}
	return out
}
