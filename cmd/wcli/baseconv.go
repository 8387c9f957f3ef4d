package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/coinforge/walletcore/baseconv"
	"github.com/urfave/cli"
)

// alphabets are the converters selectable with --base.
var alphabets = map[string]*baseconv.Converter{
	"base16":    baseconv.Base16,
	"base32":    baseconv.Base32,
	"base32hex": baseconv.Base32Hex,
	"bech32":    baseconv.Base32Bech32,
	"base64":    baseconv.Base64,
	"base64url": baseconv.Base64URL,
}

func alphabetNames() string {
	names := make([]string, 0, len(alphabets))
	for name := range alphabets {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

var baseFlag = cli.StringFlag{
	Name:  "base",
	Value: "base32",
	Usage: "Alphabet to use, one of " + alphabetNames() + ".",
}

var baseconvCommand = cli.Command{
	Name:     "baseconv",
	Category: "Encoding",
	Usage:    "Convert data to and from power of two bases.",
	Subcommands: []cli.Command{
		{
			Name:      "encode",
			Usage:     "Encode hex data in the chosen base.",
			ArgsUsage: "hex",
			Flags:     []cli.Flag{baseFlag},
			Action:    baseconvEncode,
		},
		{
			Name:      "decode",
			Usage:     "Decode text in the chosen base to hex.",
			ArgsUsage: "text",
			Flags:     []cli.Flag{baseFlag},
			Action:    baseconvDecode,
		},
	},
}

func selectedAlphabet(ctx *cli.Context) (*baseconv.Converter, error) {
	conv, ok := alphabets[ctx.String("base")]
	if !ok {
		return nil, fmt.Errorf("unknown base %q, expected one of %s",
			ctx.String("base"), alphabetNames())
	}

	return conv, nil
}

func baseconvEncode(ctx *cli.Context) error {
	conv, err := selectedAlphabet(ctx)
	if err != nil {
		return err
	}
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}
	data, err := decodeHexArg(arg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ctx.App.Writer, conv.Encode(data))

	return err
}

func baseconvDecode(ctx *cli.Context) error {
	conv, err := selectedAlphabet(ctx)
	if err != nil {
		return err
	}
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}

	data, err := conv.DecodeStrict(arg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(data))

	return err
}
