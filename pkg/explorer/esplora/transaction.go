package esplora

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bitseal-network/seald/pkg/explorer"
	"github.com/btcsuite/btcd/wire"
)

type txStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int    `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

type outspendResponse struct {
	Spent  bool     `json:"spent"`
	Txid   string   `json:"txid"`
	Vin    uint32   `json:"vin"`
	Status txStatus `json:"status"`
}

func (e *esplora) GetTransactionHex(
	ctx context.Context, txid string,
) (string, error) {
	url := fmt.Sprintf("%s/tx/%s/hex", e.apiURL, txid)
	return e.get(ctx, url)
}

func (e *esplora) GetTransaction(
	ctx context.Context, txid string,
) (*wire.MsgTx, error) {
	txHex, err := e.GetTransactionHex(ctx, txid)
	if err != nil {
		return nil, err
	}

	rawTx, err := hex.DecodeString(strings.TrimSpace(txHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}

	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}
	return tx, nil
}

func (e *esplora) IsTransactionConfirmed(
	ctx context.Context, txid string,
) (bool, error) {
	url := fmt.Sprintf("%s/tx/%s/status", e.apiURL, txid)
	resp, err := e.get(ctx, url)
	if err != nil {
		return false, err
	}

	var status txStatus
	if err := json.Unmarshal([]byte(resp), &status); err != nil {
		return false, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}
	return status.Confirmed, nil
}

func (e *esplora) GetOutspend(
	ctx context.Context, txid string, vout uint32,
) (*explorer.Outspend, error) {
	url := fmt.Sprintf("%s/tx/%s/outspend/%d", e.apiURL, txid, vout)
	resp, err := e.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var outspend outspendResponse
	if err := json.Unmarshal([]byte(resp), &outspend); err != nil {
		return nil, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}

	return &explorer.Outspend{
		Spent:         outspend.Spent,
		SpendingTxid:  outspend.Txid,
		SpendingInput: outspend.Vin,
		Confirmed:     outspend.Status.Confirmed,
	}, nil
}

func (e *esplora) GetBlockHeight(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/blocks/tip/height", e.apiURL)
	resp, err := e.get(ctx, url)
	if err != nil {
		return 0, err
	}

	height, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", explorer.ErrRequestFailed, err)
	}
	return height, nil
}
