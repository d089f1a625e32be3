// Package rpc exposes chain and leaderboard state via a JSON-RPC 2.0 HTTP
// endpoint.
package rpc

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData identifies a registered module error, e.g. arcade/4 for a
// completed game.
type ErrorData struct {
	Codespace string `json:"codespace"`
	Code      uint32 `json:"code"`
}

// Standard JSON-RPC error codes, plus server-defined ones.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeUnauthorized   = -32000
	CodeModuleError    = -32001
)

func errResponse(id any, code int, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: msg},
	}
}

// moduleErrResponse reports err with its registered codespace and code when
// it wraps a module error, and as an internal error otherwise.
func moduleErrResponse(id any, err error) Response {
	codespace, code, msg := errorsmod.ABCIInfo(err, false)
	if codespace == errorsmod.UndefinedCodespace {
		return errResponse(id, CodeInternalError, err.Error())
	}
	resp := errResponse(id, CodeModuleError, msg)
	resp.Error.Data = &ErrorData{Codespace: codespace, Code: code}
	return resp
}

func okResponse(id, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}
