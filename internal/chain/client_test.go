package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode answers JSON-RPC requests with canned results per method.
func fakeNode(t *testing.T, results map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			resp := RPCResponse{JSONRPC: "2.0", ID: req.ID,
				Error: &RPCError{Code: -32601, Message: "method not found"}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
			return
		}

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		resp := RPCResponse{JSONRPC: "2.0", ID: req.ID, Result: raw}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestBlockCount(t *testing.T) {
	node := fakeNode(t, map[string]interface{}{"getblockcount": 12345})
	defer node.Close()

	client, err := NewClient(Config{RPCURL: node.URL})
	require.NoError(t, err)

	count, err := client.BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(12345), count)
}

func TestCallSurfacesRPCError(t *testing.T) {
	node := fakeNode(t, nil)
	defer node.Close()

	client, err := NewClient(Config{RPCURL: node.URL})
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "nosuchmethod", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestGasBalance(t *testing.T) {
	node := fakeNode(t, map[string]interface{}{
		"invokefunction": map[string]interface{}{
			"state": "HALT",
			"stack": []map[string]interface{}{
				{"type": "Integer", "value": "250000000"},
			},
		},
	})
	defer node.Close()

	client, err := NewClient(Config{RPCURL: node.URL})
	require.NoError(t, err)

	addr := address.Uint160ToString(util.Uint160{0x01})
	balance, err := client.GasBalance(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, int64(250000000), balance)
}

func TestGasBalanceRejectsInvalidAddress(t *testing.T) {
	client, err := NewClient(Config{RPCURL: "http://localhost:0"})
	require.NoError(t, err)

	_, err = client.GasBalance(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestGasBalanceFaultedInvocation(t *testing.T) {
	node := fakeNode(t, map[string]interface{}{
		"invokefunction": map[string]interface{}{
			"state":     "FAULT",
			"exception": "contract reverted",
		},
	})
	defer node.Close()

	client, err := NewClient(Config{RPCURL: node.URL})
	require.NoError(t, err)

	addr := address.Uint160ToString(util.Uint160{0x01})
	_, err = client.GasBalance(context.Background(), addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract reverted")
}

func TestGetVersion(t *testing.T) {
	node := fakeNode(t, map[string]interface{}{
		"getversion": map[string]interface{}{
			"useragent": "/Neo:3.6.0/",
			"protocol":  map[string]interface{}{"network": 894710606},
		},
	})
	defer node.Close()

	client, err := NewClient(Config{RPCURL: node.URL})
	require.NoError(t, err)

	version, err := client.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(894710606), version.Protocol.Network)
}
