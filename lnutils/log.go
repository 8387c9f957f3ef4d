package lnutils

import (
	"log/slog"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btclog/v2"
	"github.com/davecgh/go-spew/spew"
)

// LogClosure is a fmt.Stringer whose text is only built when a log line is
// actually written.
type LogClosure func() string

// String implements fmt.Stringer.
func (c LogClosure) String() string {
	return c()
}

// SpewLogClosure renders a with spew once the line is written.
func SpewLogClosure(a any) LogClosure {
	return func() string {
		return spew.Sdump(a)
	}
}

// LogPubKey is a structured attribute with the leading bytes of a compressed
// public key.
func LogPubKey(key string, pubKey *btcec.PublicKey) slog.Attr {
	if pubKey == nil {
		return btclog.Fmt(key, "<nil>")
	}

	return btclog.Hex6(key, pubKey.SerializeCompressed())
}
