package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/coinforge/walletcore/base58"
	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/rlp"
	"github.com/urfave/cli"
)

var base58Command = cli.Command{
	Name:     "base58",
	Category: "Encoding",
	Usage:    "Encode or decode base58 data.",
	Subcommands: []cli.Command{
		{
			Name:      "encode",
			Usage:     "Encode hex data as base58.",
			ArgsUsage: "hex",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "check",
					Usage: "Append a double SHA-256 " +
						"checksum.",
				},
			},
			Action: base58Encode,
		},
		{
			Name:      "decode",
			Usage:     "Decode base58 text to hex.",
			ArgsUsage: "text",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "check",
					Usage: "Verify and strip the checksum.",
				},
			},
			Action: base58Decode,
		},
	},
}

// singleArg returns the only positional argument of the command.
func singleArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return "", fmt.Errorf("expected 1 argument, got %d",
			ctx.NArg())
	}

	return ctx.Args().First(), nil
}

func decodeHexArg(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}

	return b, nil
}

func base58Encode(ctx *cli.Context) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}
	data, err := decodeHexArg(arg)
	if err != nil {
		return err
	}

	out := base58.Encode(data)
	if ctx.Bool("check") {
		out = base58.EncodeWithChecksum(data)
	}

	_, err = fmt.Fprintln(ctx.App.Writer, out)

	return err
}

func base58Decode(ctx *cli.Context) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}

	decode := base58.Decode
	if ctx.Bool("check") {
		decode = base58.CheckAndDecode
	}

	data, err := decode(arg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(data))

	return err
}

var eip55Command = cli.Command{
	Name:      "eip55",
	Category:  "Encoding",
	Usage:     "Apply the EIP-55 mixed case checksum to an address.",
	ArgsUsage: "hex-address",
	Action: func(ctx *cli.Context) error {
		arg, err := singleArg(ctx)
		if err != nil {
			return err
		}

		out, err := base58.EncodeWithEIP55String(arg)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(ctx.App.Writer, out)

		return err
	},
}

var rlpCommand = cli.Command{
	Name:     "rlp",
	Category: "Encoding",
	Usage:    "Encode or decode RLP.",
	Subcommands: []cli.Command{
		{
			Name: "encode",
			Usage: "Encode a JSON value. Arrays become lists, " +
				"0x-prefixed strings are hex bytes, other " +
				"strings are text and numbers are integers.",
			ArgsUsage: "json",
			Action:    rlpEncode,
		},
		{
			Name:      "decode",
			Usage:     "Decode hex RLP and print its structure.",
			ArgsUsage: "hex",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "Print JSON with hex strings.",
				},
			},
			Action: rlpDecode,
		},
	},
}

func rlpEncode(ctx *cli.Context) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}

	node, err := jsonToNode(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(
		ctx.App.Writer, hex.EncodeToString(rlp.Encode(node)),
	)

	return err
}

func jsonToNode(v interface{}) (rlp.Node, error) {
	switch v := v.(type) {
	case []interface{}:
		list := rlp.NewList()
		for _, item := range v {
			child, err := jsonToNode(item)
			if err != nil {
				return nil, err
			}
			list.Append(child)
		}

		return list, nil

	case string:
		if strings.HasPrefix(v, "0x") {
			b, err := decodeHexArg(v)
			if err != nil {
				return nil, err
			}

			return rlp.NewString(b), nil
		}

		return rlp.NewStringFromText(v), nil

	case json.Number:
		n, err := bigint.FromDecimal(v.String())
		if err != nil {
			return nil, err
		}

		return rlp.NewBigInt(n)

	default:
		return nil, fmt.Errorf("unsupported json value %v", v)
	}
}

func rlpDecode(ctx *cli.Context) error {
	arg, err := singleArg(ctx)
	if err != nil {
		return err
	}
	data, err := decodeHexArg(arg)
	if err != nil {
		return err
	}

	node, err := rlp.Decode(data)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(ctx.App.Writer, nodeToJSON(node))
	}

	_, err = fmt.Fprint(ctx.App.Writer, rlp.Dump(node))

	return err
}

func nodeToJSON(n rlp.Node) interface{} {
	return rlp.Match(n,
		func(s *rlp.String) interface{} {
			return "0x" + hex.EncodeToString(s.Bytes())
		},
		func(l *rlp.List) interface{} {
			items := make([]interface{}, 0, l.Len())
			for _, child := range l.Items() {
				items = append(items, nodeToJSON(child))
			}

			return items
		},
	)
}

var bigintCommand = cli.Command{
	Name:     "bigint",
	Category: "Arithmetic",
	Usage:    "Apply an arbitrary precision integer operation.",
	ArgsUsage: "add|sub|mul|div|mod|pow|cmp a b\n\n" +
		"   Operands are decimal, or hex with a 0x prefix. The " +
		"exponent of pow is a non-negative decimal.",
	Action: bigintOp,
}

func parseOperand(s string) (bigint.BigInt, error) {
	if strings.HasPrefix(strings.TrimPrefix(s, "-"), "0x") {
		return bigint.FromHex(s)
	}

	return bigint.FromDecimal(s)
}

func bigintOp(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		_ = cli.ShowCommandHelp(ctx, ctx.Command.Name)
		return fmt.Errorf("expected 3 arguments, got %d", ctx.NArg())
	}
	args := ctx.Args()

	a, err := parseOperand(args.Get(1))
	if err != nil {
		return err
	}

	var result fmt.Stringer
	switch op := args.Get(0); op {
	case "pow":
		p, err := strconv.ParseUint(args.Get(2), 10, 0)
		if err != nil {
			return fmt.Errorf("invalid exponent: %w", err)
		}
		result = a.Pow(uint(p))

	case "add", "sub", "mul", "div", "mod", "cmp":
		b, err := parseOperand(args.Get(2))
		if err != nil {
			return err
		}
		result, err = binaryOp(op, a, b)
		if err != nil {
			return err
		}

	default:
		return errors.New("unknown operation " + op)
	}

	_, err = fmt.Fprintln(ctx.App.Writer, result)

	return err
}

func binaryOp(op string, a, b bigint.BigInt) (fmt.Stringer, error) {
	switch op {
	case "add":
		return a.Add(b), nil
	case "sub":
		return a.Sub(b), nil
	case "mul":
		return a.Mul(b), nil
	case "div":
		return a.Div(b)
	case "mod":
		return a.Mod(b)
	default:
		return bigint.New(int64(a.Cmp(b))), nil
	}
}
