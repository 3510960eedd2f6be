package core

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Response is a decoded service reply. The service wraps results in a
// {"data": ...} envelope; Raw keeps the full body so callers can reach
// fields the SDK does not model.
type Response struct {
	Raw  json.RawMessage
	Data json.RawMessage
}

// NewResponse wraps a raw JSON body. A body that is not JSON is an error.
func NewResponse(body []byte) (*Response, error) {
	if len(body) == 0 {
		return &Response{Raw: json.RawMessage("null"), Data: json.RawMessage("null")}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid json")
	}
	data := gjson.GetBytes(body, "data")
	resp := &Response{Raw: json.RawMessage(body), Data: json.RawMessage("null")}
	if data.Exists() {
		resp.Data = json.RawMessage(data.Raw)
	}
	return resp, nil
}

// Get reads a gjson path from the raw body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// Decode unmarshals the data envelope into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Data, v)
}

// MarshalJSON emits the original body unchanged.
func (r *Response) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// MemoryPayload is the memory content carried by a pull response.
// Either field may be empty.
type MemoryPayload struct {
	Episodic  string `json:"episodic,omitempty"`
	Character string `json:"character,omitempty"`
}

// IsEmpty reports whether neither category carries text.
func (p MemoryPayload) IsEmpty() bool {
	return p.Episodic == "" && p.Character == ""
}

// ParsePayload extracts data.episodic and data.character from a pull
// response. Missing, null or non-string fields read as empty; objects are
// kept as their JSON text.
func ParsePayload(r *Response) MemoryPayload {
	if r == nil {
		return MemoryPayload{}
	}
	return MemoryPayload{
		Episodic:  textField(r.Get("data.episodic")),
		Character: textField(r.Get("data.character")),
	}
}

func textField(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.JSON:
		return v.Raw
	default:
		return ""
	}
}
