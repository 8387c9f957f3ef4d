package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/coinforge/walletcore"
	"github.com/coinforge/walletcore/build"
	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[wcli] %v\n", err)
	os.Exit(1)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", b)

	return err
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "wcli"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "encode, decode and derive wallet data"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "homedir",
			Value:     walletcore.DefaultHomeDir,
			Usage:     "The path to walletcore's base directory.",
			TakesFile: true,
		},
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network keys and addresses are for, e.g. " +
				"mainnet, testnet, etc.",
			Value: "mainnet",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "Number of goroutines used for derivation.",
			Value: walletcore.DefaultWorkers,
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Usage: "If set, log to the console at this " +
				"level, e.g. debug or ASYN=trace.",
		},
	}
	app.Commands = []cli.Command{
		base58Command,
		baseconvCommand,
		eip55Command,
		rlpCommand,
		bigintCommand,
		deriveCommand,
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}
