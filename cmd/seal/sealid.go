package main

import (
	"fmt"

	"github.com/bitseal-network/seald/pkg/sealid"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/urfave/cli/v2"
)

var sealidCmd = cli.Command{
	Name:  "sealid",
	Usage: "convert between outpoints and bech32 seal identifiers",
	Subcommands: []*cli.Command{
		{
			Name:  "encode",
			Usage: "encode a txid:vout outpoint to its bech32 identifier",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "txid", Required: true},
				&cli.UintFlag{Name: "vout"},
			},
			Action: sealidEncodeAction,
		},
		{
			Name:  "decode",
			Usage: "decode a bech32 identifier back to its outpoint",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Required: true},
			},
			Action: sealidDecodeAction,
		},
	},
}

func sealidEncodeAction(ctx *cli.Context) error {
	txid, err := chainhash.NewHashFromStr(ctx.String("txid"))
	if err != nil {
		return fmt.Errorf("invalid txid: %w", err)
	}

	id, err := sealid.Encode(wire.OutPoint{
		Hash:  *txid,
		Index: uint32(ctx.Uint("vout")),
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

func sealidDecodeAction(ctx *cli.Context) error {
	outpoint, err := sealid.Decode(ctx.String("id"))
	if err != nil {
		return err
	}

	fmt.Printf("%s:%d\n", outpoint.Hash.String(), outpoint.Index)
	return nil
}
