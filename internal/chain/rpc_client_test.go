package chain_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/jsonx"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry/registrytest"
)

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// newRpcServer 返回固定响应体，并记录最后一次请求（jsonx 解码，数字为 json.Number）
func newRpcServer(t *testing.T, body string, last *rpcRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, jsonx.Unmarshal(raw, last))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFindProgramAccounts(t *testing.T) {
	program := consts.RaydiumStakeV4Program
	pool, owner := registrytest.Key("pool"), registrytest.Key("owner")
	ledger := registrytest.Key("ledger")
	data := make([]byte, 96)
	copy(data[8:40], pool[:])
	copy(data[40:72], owner[:])

	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":[{"pubkey":%q,"account":{"lamports":1559040,"owner":%q,"data":[%q,"base64"],"executable":false,"rentEpoch":361}}]}`,
		ledger.String(), program.String(), base64.StdEncoding.EncodeToString(data))
	var req rpcRequest
	srv := newRpcServer(t, body, &req)

	c, err := chain.NewRpcClient(srv.URL, time.Second)
	require.NoError(t, err)
	accounts, err := c.FindProgramAccounts(context.Background(), program, 96, []chain.MemcmpFilter{
		{Offset: 8, Bytes: pool[:]},
		{Offset: 40, Bytes: owner[:]},
	})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, ledger, accounts[0].Address)
	assert.Equal(t, program, accounts[0].Owner)
	assert.Equal(t, uint64(1559040), accounts[0].Lamports)
	assert.Equal(t, data, accounts[0].Data)

	// 请求参数: 程序地址 + base64 编码 + dataSize / memcmp 过滤
	assert.Equal(t, "getProgramAccounts", req.Method)
	require.Len(t, req.Params, 2)
	assert.Equal(t, program.String(), req.Params[0])
	cfg, ok := req.Params[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "base64", cfg["encoding"])
	assert.Equal(t, "confirmed", cfg["commitment"])
	filters, ok := cfg["filters"].([]any)
	require.True(t, ok)
	require.Len(t, filters, 3)
	assert.Equal(t, map[string]any{"dataSize": json.Number("96")}, filters[0])
	assert.Equal(t, map[string]any{"memcmp": map[string]any{"offset": json.Number("8"), "bytes": base58.Encode(pool[:])}}, filters[1])
	assert.Equal(t, map[string]any{"memcmp": map[string]any{"offset": json.Number("40"), "bytes": base58.Encode(owner[:])}}, filters[2])
}

func TestFindProgramAccountsEmpty(t *testing.T) {
	var req rpcRequest
	srv := newRpcServer(t, `{"jsonrpc":"2.0","id":1,"result":[]}`, &req)

	c, err := chain.NewRpcClient(srv.URL, time.Second)
	require.NoError(t, err)
	accounts, err := c.FindProgramAccounts(context.Background(), consts.RaydiumStakeV3Program, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	cfg := req.Params[1].(map[string]any)
	_, hasFilters := cfg["filters"]
	assert.False(t, hasFilters)
}

func TestFindProgramAccountsErrors(t *testing.T) {
	cases := map[string]string{
		"rpc error":    `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param"}}`,
		"bad encoding": `{"jsonrpc":"2.0","id":1,"result":[{"pubkey":"11111111111111111111111111111111","account":{"lamports":1,"owner":"11111111111111111111111111111111","data":["AAAA","base58"]}}]}`,
		"bad pubkey":   `{"jsonrpc":"2.0","id":1,"result":[{"pubkey":"not-a-key","account":{"lamports":1,"owner":"11111111111111111111111111111111","data":["AAAA","base64"]}}]}`,
		"bad base64":   `{"jsonrpc":"2.0","id":1,"result":[{"pubkey":"11111111111111111111111111111111","account":{"lamports":1,"owner":"11111111111111111111111111111111","data":["!!!","base64"]}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var req rpcRequest
			srv := newRpcServer(t, body, &req)
			c, err := chain.NewRpcClient(srv.URL, time.Second)
			require.NoError(t, err)

			_, err = c.FindProgramAccounts(context.Background(), consts.RaydiumStakeV4Program, 96, nil)
			assert.True(t, errors.Is(err, xerr.ErrRpc), "got %v", err)
		})
	}
}
