package main

import (
	"errors"
	"fmt"

	"github.com/coinforge/walletcore"
	"github.com/coinforge/walletcore/async"
	"github.com/coinforge/walletcore/keychain"
	"github.com/urfave/cli"
)

var deriveCommand = cli.Command{
	Name:     "derive",
	Category: "Keys",
	Usage:    "Derive child keys and addresses from a mnemonic.",
	Description: `
	Derive count consecutive children of path, starting at index start.
	Bitcoin addresses are P2WPKH under a purpose 84' path and P2PKH
	otherwise. With --eth, ethereum addresses are printed instead and the
	default path is m/44'/60'/0'/0.
	`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "mnemonic",
			Usage: "The BIP-39 mnemonic to derive from.",
		},
		cli.StringFlag{
			Name:  "passphrase",
			Usage: "The optional BIP-39 passphrase.",
		},
		cli.StringFlag{
			Name:  "path",
			Usage: "The parent path of the derived keys.",
		},
		cli.Uint64Flag{
			Name:  "start",
			Usage: "The index of the first derived child.",
		},
		cli.IntFlag{
			Name:  "count",
			Usage: "The number of children to derive.",
			Value: 1,
		},
		cli.BoolFlag{
			Name:  "eth",
			Usage: "Print ethereum addresses.",
		},
	},
	Action: derive,
}

// loadConfig turns the global flags into an engine config.
func loadConfig(ctx *cli.Context) (*walletcore.Config, error) {
	args := []string{
		"--homedir=" + ctx.GlobalString("homedir"),
		"--network=" + ctx.GlobalString("network"),
		fmt.Sprintf("--workers=%d", ctx.GlobalInt("workers")),
		"--logging.file.disable",
	}

	if level := ctx.GlobalString("debuglevel"); level != "" {
		args = append(args, "--debuglevel="+level)
	} else {
		args = append(args, "--logging.console.disable")
	}

	return walletcore.LoadConfig(args)
}

func derive(ctx *cli.Context) error {
	mnemonic := ctx.String("mnemonic")
	if mnemonic == "" {
		return errors.New("mnemonic is required")
	}

	pathStr := ctx.String("path")
	if pathStr == "" {
		pathStr = "m/44'/0'/0'/0"
		if ctx.Bool("eth") {
			pathStr = "m/44'/60'/0'/0"
		}
	}
	path, err := keychain.ParsePath(pathStr)
	if err != nil {
		return err
	}

	start := ctx.Uint64("start")
	if start >= uint64(keychain.Hardened(0)) {
		return fmt.Errorf("start index %d out of range", start)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = cfg.LogRotator.Close()
	}()

	engine, err := walletcore.NewEngine(cfg)
	if err != nil {
		return err
	}
	if err := engine.Start(); err != nil {
		return err
	}
	defer func() {
		_ = engine.Stop()
	}()

	keys, err := async.Wait(engine.Derive(walletcore.DeriveRequest{
		Mnemonic:   mnemonic,
		Passphrase: ctx.String("passphrase"),
		Path:       path,
		Start:      uint32(start),
		Count:      ctx.Int("count"),
		Ethereum:   ctx.Bool("eth"),
	}))
	if err != nil {
		return err
	}

	type derivedKey struct {
		Path      string `json:"path"`
		PublicKey string `json:"public_key"`
		Address   string `json:"address"`
	}

	out := make([]derivedKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, derivedKey{
			Path:      k.Path.String(),
			PublicKey: k.PublicKey,
			Address:   k.Address,
		})
	}

	return printJSON(ctx.App.Writer, out)
}
