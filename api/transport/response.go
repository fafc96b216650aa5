package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// Meta carries response metadata. Warnings report secondary effects that
// failed after the request's primary write succeeded.
type Meta struct {
	Warnings []string `json:"warnings,omitempty"`
	Total    *int     `json:"total,omitempty"`
}

// MetaWithWarnings returns nil when there is nothing to report so the meta
// field is omitted.
func MetaWithWarnings(warnings []string) interface{} {
	if len(warnings) == 0 {
		return nil
	}
	return Meta{Warnings: warnings}
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
