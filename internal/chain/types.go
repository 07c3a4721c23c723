package chain

import (
	"encoding/json"
	"fmt"
)

// RPCRequest is a JSON-RPC request.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NodeVersion represents Neo node version info.
type NodeVersion struct {
	TCPPort   int    `json:"tcpport"`
	Nonce     int64  `json:"nonce"`
	UserAgent string `json:"useragent"`
	Protocol  struct {
		Network         uint32 `json:"network"`
		ValidatorsCount int    `json:"validatorscount"`
		MSPerBlock      int    `json:"msperblock"`
	} `json:"protocol"`
}

// InvokeResult is the result of invokefunction.
type InvokeResult struct {
	Script      string      `json:"script"`
	State       string      `json:"state"`
	GasConsumed string      `json:"gasconsumed"`
	Exception   string      `json:"exception,omitempty"`
	Stack       []StackItem `json:"stack"`
}

// StackItem is a Neo VM stack item.
type StackItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}
