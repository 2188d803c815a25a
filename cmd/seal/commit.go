package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/bitseal-network/seald/pkg/dbc"
	"github.com/bitseal-network/seald/pkg/encoding"
	"github.com/bitseal-network/seald/pkg/taggedhash"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/urfave/cli/v2"
)

var commit = cli.Command{
	Name:  "commit",
	Usage: "embed a message commitment into a scriptPubkey template",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "pubkey",
			Usage:    "compressed public key in hex carrying the commitment",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "method",
			Usage: "scriptPubkey template, ie. pubkeyhash, wpubkeyhash, taproot...",
			Value: "wpubkeyhash",
		},
		&cli.StringFlag{
			Name:  "script",
			Usage: "lock script in hex, for the script-based templates",
		},
		&cli.StringFlag{
			Name:  "tag",
			Usage: "protocol domain-separation string",
			Value: "bitseal",
		},
		&cli.StringFlag{
			Name:     "message",
			Usage:    "message to commit to",
			Required: true,
		},
	},
	Action: commitAction,
}

func commitAction(ctx *cli.Context) error {
	keyBytes, err := hex.DecodeString(ctx.String("pubkey"))
	if err != nil {
		return fmt.Errorf("invalid pubkey: %w", err)
	}
	pubkey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return fmt.Errorf("invalid pubkey: %w", err)
	}

	method, err := dbc.ScriptEncodeMethodFromString(ctx.String("method"))
	if err != nil {
		return fmt.Errorf("invalid method %q", ctx.String("method"))
	}

	var lockScript []byte
	if script := ctx.String("script"); len(script) > 0 {
		lockScript, err = hex.DecodeString(script)
		if err != nil {
			return fmt.Errorf("invalid script: %w", err)
		}
	}

	scriptPubkey, proof, err := dbc.CommitToScriptPubkey(dbc.CommitToSpkOpts{
		Method:     method,
		Pubkey:     pubkey,
		LockScript: lockScript,
		Tag:        taggedhash.NewProtocolTag(ctx.String("tag")),
	}, []byte(ctx.String("message")))
	if err != nil {
		return err
	}

	proofBytes, err := encoding.MarshalProof(proof)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(map[string]string{
		"scriptPubkey": hex.EncodeToString(scriptPubkey),
		"proof":        hex.EncodeToString(proofBytes),
	}, "", "  ")
	fmt.Println(string(out))
	return nil
}
