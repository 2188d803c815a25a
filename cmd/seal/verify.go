package main

import (
	"encoding/hex"
	"fmt"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/encoding"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/urfave/cli/v2"
)

var verify = cli.Command{
	Name:  "verify",
	Usage: "verify a commitment embedded into a scriptPubkey",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "spk",
			Usage:    "committed scriptPubkey in hex",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "proof",
			Usage:    "serialized commitment proof in hex",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "tag",
			Usage: "protocol domain-separation string",
			Value: "bitseal",
		},
		&cli.StringFlag{
			Name:     "message",
			Usage:    "message the commitment is expected to cover",
			Required: true,
		},
	},
	Action: verifyAction,
}

func verifyAction(ctx *cli.Context) error {
	scriptPubkey, err := hex.DecodeString(ctx.String("spk"))
	if err != nil {
		return fmt.Errorf("invalid scriptPubkey: %w", err)
	}

	proofBytes, err := hex.DecodeString(ctx.String("proof"))
	if err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}
	proof, err := encoding.UnmarshalProof(proofBytes)
	if err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}

	if err := dbc.VerifyScriptPubkey(
		scriptPubkey,
		taggedhash.NewProtocolTag(ctx.String("tag")),
		[]byte(ctx.String("message")),
		proof,
	); err != nil {
		return err
	}

	fmt.Println("commitment is valid")
	return nil
}
