// Package jsonrpc implements the JSON-RPC 2.0 message model and framing
// codec used to talk to an LSP server over a child process's stdio.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// MessageID is the JSON-RPC request identifier: an integer, a string, or
// null. The wire representation is untagged, so marshaling/unmarshaling
// has to inspect the underlying JSON token rather than a discriminant
// field.
type MessageID struct {
	isString bool
	isNull   bool
	num      int32
	str      string
}

// NewIntID builds a numeric MessageID. IDs 0 is never used by the runtime,
// but an ID value of 0 is still representable here (e.g. for IDs echoed
// back from a server that doesn't honor that invariant).
func NewIntID(n int32) MessageID {
	return MessageID{num: n}
}

// NewStringID builds a string-valued MessageID.
func NewStringID(s string) MessageID {
	return MessageID{isString: true, str: s}
}

// NullID returns the null MessageID variant.
func NullID() MessageID {
	return MessageID{isNull: true}
}

// IsNull reports whether the ID is the null variant.
func (id MessageID) IsNull() bool { return id.isNull }

// String renders the ID for use as a map key and in log output.
func (id MessageID) String() string {
	switch {
	case id.isNull:
		return "null"
	case id.isString:
		return id.str
	default:
		return fmt.Sprintf("%d", id.num)
	}
}

// Equal reports whether two MessageIDs denote the same request.
func (id MessageID) Equal(other MessageID) bool {
	return id.isString == other.isString && id.isNull == other.isNull &&
		id.num == other.num && id.str == other.str
}

func (id MessageID) MarshalJSON() ([]byte, error) {
	switch {
	case id.isNull:
		return []byte("null"), nil
	case id.isString:
		return json.Marshal(id.str)
	default:
		return json.Marshal(id.num)
	}
}

func (id *MessageID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*id = NullID()
	case string:
		*id = NewStringID(v)
	case float64:
		*id = NewIntID(int32(v))
	default:
		return fmt.Errorf("jsonrpc: unsupported id type %T", raw)
	}
	return nil
}

// ResponseError mirrors a JSON-RPC error object.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// Message is the single wire envelope for every request, notification,
// response, and error response exchanged with the LSP server.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *MessageID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// NewRequest builds an outbound client-to-server request.
func NewRequest(id MessageID, method string, params any) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal params for %s: %w", method, err)
	}
	return &Message{JSONRPC: "2.0", ID: &id, Method: method, Params: raw}, nil
}

// NewNotification builds an outbound notification (no ID, no reply expected).
func NewNotification(method string, params any) (*Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal params for %s: %w", method, err)
	}
	return &Message{JSONRPC: "2.0", Method: method, Params: raw}, nil
}

// NewResponse builds a success response to an inbound server request.
func NewResponse(id MessageID, result any) (*Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal result: %w", err)
	}
	return &Message{JSONRPC: "2.0", ID: &id, Result: raw}, nil
}

// NewErrorResponse builds an error response to an inbound server request.
func NewErrorResponse(id MessageID, code int, message string) *Message {
	return &Message{JSONRPC: "2.0", ID: &id, Error: &ResponseError{Code: code, Message: message}}
}

// IsRequest reports whether the message is a server-to-client request:
// method and id both present.
func (m *Message) IsRequest() bool {
	return m.Method != "" && m.ID != nil
}

// IsNotification reports whether the message is a server-to-client
// notification: method present, id absent.
func (m *Message) IsNotification() bool {
	return m.Method != "" && m.ID == nil
}

// IsResponse reports whether the message is a response to a prior
// client request: method absent, and either result or error present.
func (m *Message) IsResponse() bool {
	return m.Method == "" && (m.Result != nil || m.Error != nil)
}
