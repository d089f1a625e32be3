package rpc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/rpc"
	"github.com/tolelom/arcadechain/vm/modules/arcade"
)

// TestGameOverHTTP plays a full game against a running node: block
// production and the JSON-RPC server run concurrently, the player only
// talks to the node over HTTP.
func TestGameOverHTTP(t *testing.T) {
	n := newTestNode(t)
	server := rpc.NewServer("127.0.0.1:0", n.handler, "secret", log.NewNopLogger())
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.poa.Run(gctx, 10*time.Millisecond) })
	g.Go(func() error { return server.Serve(gctx) })
	t.Cleanup(func() {
		cancel()
		require.NoError(t, g.Wait())
	})

	url := "http://" + server.Addr()
	client := rpc.NewClient(url, "secret")
	call := func(method string, params, out any) {
		t.Helper()
		require.NoError(t, client.Call(ctx, method, params, out))
	}
	nonce := func() uint64 {
		var acc struct {
			Nonce uint64 `json:"nonce"`
		}
		call("getBalance", map[string]string{"address": n.w.PubKey()}, &acc)
		return acc.Nonce
	}
	// send submits tx and waits until it is mined.
	send := func(tx *core.Transaction, err error) {
		t.Helper()
		require.NoError(t, err)
		call("sendTx", tx, nil)
		require.Eventually(t, func() bool { return nonce() > tx.Nonce }, 5*time.Second, 10*time.Millisecond)
	}

	var rpcErr *rpc.Error
	err := rpc.NewClient(url, "wrong").Call(ctx, "getBlockHeight", nil, nil)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, rpc.CodeUnauthorized, rpcErr.Code)

	send(n.w.InitLeaderboard(0, 0))
	send(n.w.StartGame(40, 1, 0))

	// The index is updated once the block's events are published.
	var keys []string
	require.Eventually(t, func() bool {
		call("getSessionsByPlayer", map[string]string{"player": n.w.PubKey()}, &keys)
		return len(keys) == 1
	}, 5*time.Second, 10*time.Millisecond)
	key, err := core.ParseSessionKey(keys[0])
	require.NoError(t, err)

	send(n.w.ActivateGame(key, 2, 0))
	send(n.w.SubmitScore(key, 1234, 3, 0))

	var view arcade.LeaderboardView
	call("getLeaderboard", nil, &view)
	require.Equal(t, uint64(1), view.TotalGamesCompleted)
	require.Len(t, view.Top, 1)
	require.Equal(t, 1, view.Top[0].Rank)
	require.Equal(t, uint64(1234), view.Top[0].Score)
	require.Equal(t, n.w.PubKey(), view.Top[0].Player)

	var sess arcade.SessionView
	call("getSession", map[string]string{"session": keys[0]}, &sess)
	require.Equal(t, core.SessionCompleted, sess.State)

	// A failing submit is dropped, not mined, and does not stall the chain.
	tx, err := n.w.SubmitScore(key, 9999, 4, 0)
	require.NoError(t, err)
	call("sendTx", tx, nil)
	require.Eventually(t, func() bool { return n.mempool.Size() == 0 }, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, uint64(4), nonce())

	err = client.Call(ctx, "getSession", map[string]string{"session": "bad"}, nil)
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, rpc.CodeModuleError, rpcErr.Code)
	require.Equal(t, arcade.ModuleName, rpcErr.Data.Codespace)
}
