package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/indexer"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/vm/modules/arcade"
	"github.com/tolelom/arcadechain/vm/modules/economy"
)

// Handler holds all dependencies needed to serve RPC methods.
type Handler struct {
	bc      *core.Blockchain
	mempool *core.Mempool
	state   core.State
	indexer *indexer.Indexer
	chainID string // transactions for any other chain are rejected
}

// NewHandler creates an RPC Handler. state is only read; pass a committed
// view (storage.StateDB.Committed) so queries never observe a block that is
// still executing.
func NewHandler(bc *core.Blockchain, mempool *core.Mempool, state core.State, idx *indexer.Indexer, chainID string) *Handler {
	return &Handler{bc: bc, mempool: mempool, state: state, indexer: idx, chainID: chainID}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	switch req.Method {
	case "getBlockHeight":
		return okResponse(req.ID, h.bc.Height())

	case "getBlock":
		return h.getBlock(req)

	case "getBalance":
		return h.getBalance(req)

	case "getCustody":
		return h.getCustody(req)

	case "getLeaderboard":
		return h.getLeaderboard(req)

	case "getSession":
		return h.getSession(req)

	case "getSessionsByPlayer":
		return h.getSessionsByPlayer(req)

	case "sendTx":
		return h.sendTx(req)

	case "getMempoolSize":
		return okResponse(req.ID, h.mempool.Size())

	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

// decodeParams unmarshals params into v. Absent params decode as {}.
func decodeParams(req Request, v any) *Response {
	if len(req.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params, v); err != nil {
		resp := errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
		return &resp
	}
	return nil
}

func (h *Handler) getBlock(req Request) Response {
	var params struct {
		Hash   string `json:"hash"`
		Height *int64 `json:"height"`
	}
	if resp := decodeParams(req, &params); resp != nil {
		return *resp
	}

	var block *core.Block
	var err error
	switch {
	case params.Hash != "":
		block, err = h.bc.GetBlock(params.Hash)
	case params.Height != nil:
		block, err = h.bc.GetBlockByHeight(*params.Height)
	default:
		block = h.bc.Tip()
	}
	if errors.Is(err, core.ErrNotFound) || (err == nil && block == nil) {
		return errResponse(req.ID, CodeInvalidParams, "block not found")
	}
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, block)
}

func (h *Handler) getBalance(req Request) Response {
	var params struct {
		Address string `json:"address"`
	}
	if resp := decodeParams(req, &params); resp != nil {
		return *resp
	}
	if params.Address == "" {
		return errResponse(req.ID, CodeInvalidParams, "address is required")
	}
	acc, err := h.state.GetAccount(params.Address)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]any{"address": params.Address, "balance": acc.Balance, "nonce": acc.Nonce})
}

// getCustody reports the escrow account holding every game entry payment.
func (h *Handler) getCustody(req Request) Response {
	bal, err := economy.Balance(h.state, arcade.CustodyAddress)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]any{"address": arcade.CustodyAddress, "balance": bal})
}

func (h *Handler) getLeaderboard(req Request) Response {
	view, err := arcade.Query(h.state)
	if err != nil {
		return moduleErrResponse(req.ID, err)
	}
	return okResponse(req.ID, view)
}

func (h *Handler) getSession(req Request) Response {
	var params struct {
		Session string `json:"session"`
	}
	if resp := decodeParams(req, &params); resp != nil {
		return *resp
	}
	if params.Session == "" {
		return errResponse(req.ID, CodeInvalidParams, "session is required")
	}
	view, err := arcade.GetSession(h.state, params.Session)
	if err != nil {
		return moduleErrResponse(req.ID, err)
	}
	return okResponse(req.ID, view)
}

func (h *Handler) getSessionsByPlayer(req Request) Response {
	var params struct {
		Player string `json:"player"`
	}
	if resp := decodeParams(req, &params); resp != nil {
		return *resp
	}
	if params.Player == "" {
		return errResponse(req.ID, CodeInvalidParams, "player is required")
	}
	keys, err := h.indexer.SessionsByPlayer(params.Player)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	if keys == nil {
		keys = []string{}
	}
	return okResponse(req.ID, keys)
}

func (h *Handler) sendTx(req Request) Response {
	var tx core.Transaction
	if len(req.Params) == 0 {
		return errResponse(req.ID, CodeInvalidParams, "transaction is required")
	}
	if err := json.Unmarshal(req.Params, &tx); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if tx.ChainID != h.chainID {
		return errResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("chain ID mismatch: got %q want %q", tx.ChainID, h.chainID))
	}
	if !vm.Supports(tx.Type) {
		return errResponse(req.ID, CodeInvalidParams, fmt.Sprintf("unsupported tx type %q", tx.Type))
	}
	// The client-provided ID is not trusted.
	tx.ID = tx.Hash()
	if err := tx.Verify(); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "signature: "+err.Error())
	}
	if err := h.mempool.Add(&tx); err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]string{"tx_id": tx.ID})
}
