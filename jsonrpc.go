package fileops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONRPCVersion is the protocol version stamped on every outgoing message.
const JSONRPCVersion = "2.0"

// Error codes used in responses.
const (
	ErrorCodeMethodNotFound  = -32601
	ErrorCodeExecutionFailed = -32000
)

// Request is a single inbound message. ID is kept raw so it can be echoed
// back exactly as received; a nil ID means the member was absent.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// UnmarshalJSON decodes a request object. Member names must match exactly,
// and a method or jsonrpc member that is not a string is treated as absent.
func (r *Request) UnmarshalJSON(data []byte) error {
	members, err := decodeMembers(data)
	if err != nil {
		return err
	}

	*r = Request{
		ID:     members["id"],
		Params: members["params"],
	}
	r.JSONRPC, _ = stringMember(members, "jsonrpc")
	r.Method, _ = stringMember(members, "method")
	return nil
}

// decodeMembers splits a JSON object into its members keyed by their exact
// names. encoding/json matches struct fields case-insensitively, which would
// let "METHOD" stand in for "method".
func decodeMembers(data []byte) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// stringMember returns the named member if it is present and a JSON string.
func stringMember(members map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := members[name]
	if !ok || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Response is a single outbound message. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error member of a Response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func newResponse(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: result}
}

func newErrorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}

// writeMessage encodes v as a single line and writes it with one Write call.
// HTML escaping is off so text fields go out exactly as they came in.
func writeMessage(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
