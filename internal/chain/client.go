// Package chain provides Neo N3 blockchain interaction for the channel layer.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/tidwall/gjson"
)

// GasToken is the script hash of the native GAS contract.
const GasToken = "0xd2a4cff31913016155e38e474a2c06d08be276cf"

// Client provides Neo N3 RPC client functionality.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	networkID  uint32
}

// Config holds client configuration.
type Config struct {
	RPCURL    string
	NetworkID uint32 // MainNet: 860833102, TestNet: 894710606
	Timeout   time.Duration
}

// NewClient creates a new Neo N3 client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		networkID: cfg.NetworkID,
	}, nil
}

// NetworkID returns the configured network magic.
func (c *Client) NetworkID() uint32 {
	return c.networkID
}

// Call makes an RPC call to the Neo N3 node.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}

	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// BlockCount returns the current block height.
func (c *Client) BlockCount(ctx context.Context) (uint32, error) {
	result, err := c.Call(ctx, "getblockcount", nil)
	if err != nil {
		return 0, err
	}

	var count uint32
	if err := json.Unmarshal(result, &count); err != nil {
		return 0, fmt.Errorf("unmarshal block count: %w", err)
	}
	return count, nil
}

// GetVersion returns the node version and protocol settings.
func (c *Client) GetVersion(ctx context.Context) (*NodeVersion, error) {
	result, err := c.Call(ctx, "getversion", nil)
	if err != nil {
		return nil, err
	}

	var version NodeVersion
	if err := json.Unmarshal(result, &version); err != nil {
		return nil, fmt.Errorf("unmarshal version: %w", err)
	}
	return &version, nil
}

// InvokeFunction invokes a contract function (read-only).
func (c *Client) InvokeFunction(ctx context.Context, scriptHash, operation string, params []interface{}) (*InvokeResult, error) {
	if params == nil {
		params = []interface{}{}
	}

	result, err := c.Call(ctx, "invokefunction", []interface{}{scriptHash, operation, params})
	if err != nil {
		return nil, err
	}

	var invokeResult InvokeResult
	if err := json.Unmarshal(result, &invokeResult); err != nil {
		return nil, fmt.Errorf("unmarshal invoke result: %w", err)
	}
	return &invokeResult, nil
}

// GasBalance returns the GAS balance of addr in fractions (1e-8 GAS). The
// lookup goes through the native GAS contract's balanceOf.
func (c *Client) GasBalance(ctx context.Context, addr string) (int64, error) {
	u160, err := address.StringToUint160(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	params := []interface{}{
		map[string]interface{}{"type": "Hash160", "value": "0x" + u160.StringLE()},
	}
	result, err := c.Call(ctx, "invokefunction", []interface{}{GasToken, "balanceOf", params})
	if err != nil {
		return 0, err
	}

	parsed := gjson.ParseBytes(result)
	if state := parsed.Get("state").String(); state != "HALT" {
		return 0, fmt.Errorf("balanceOf faulted: %s", parsed.Get("exception").String())
	}

	raw := parsed.Get("stack.0.value").String()
	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected balanceOf result %q", raw)
	}
	return balance, nil
}
