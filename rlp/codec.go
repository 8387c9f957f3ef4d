package rlp

import (
	"github.com/coinforge/walletcore/errorcodes"
	gethrlp "github.com/ethereum/go-ethereum/rlp"
)

// Encode serializes the tree rooted at n.
func Encode(n Node) []byte {
	w := gethrlp.NewEncoderBuffer(nil)
	defer func() {
		_ = w.Flush()
	}()

	writeNode(w, n)

	return w.ToBytes()
}

// writeNode appends n to w. Strings of a single byte below 0x80 are written
// as that byte.
func writeNode(w gethrlp.EncoderBuffer, n Node) {
	switch n := n.(type) {
	case *String:
		w.WriteBytes(n.data)

	case *List:
		idx := w.List()
		for _, child := range n.children {
			writeNode(w, child)
		}
		w.ListEnd(idx)
	}
}

// split parses the leading item of b, rejecting truncated input and
// non-canonical sizes.
func split(b []byte) (Kind, []byte, []byte, error) {
	k, content, rest, err := gethrlp.Split(b)
	if err != nil {
		return KindString, nil, nil, errorcodes.Wrap(
			errorcodes.ErrCodeInvalidFormat, err,
			"malformed rlp item",
		)
	}

	if k == gethrlp.List {
		return KindList, content, rest, nil
	}

	return KindString, content, rest, nil
}

// DecodeHeader inspects the item at the start of b and returns the offset of
// its payload, the payload length and its kind. A single byte below 0x80 is
// its own payload, reported with offset zero and length one.
func DecodeHeader(b []byte) (int, int, Kind, error) {
	kind, content, rest, err := split(b)
	if err != nil {
		return 0, 0, kind, err
	}

	offset := len(b) - len(rest) - len(content)

	return offset, len(content), kind, nil
}

// Decode parses a single item spanning the whole of b.
func Decode(b []byte) (Node, error) {
	n, rest, err := decodeItem(b)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidFormat,
			"%d trailing bytes after rlp item", len(rest),
		)
	}

	return n, nil
}

// decodeItem parses the leading item of b and returns the unconsumed tail.
func decodeItem(b []byte) (Node, []byte, error) {
	kind, payload, rest, err := split(b)
	if err != nil {
		return nil, nil, err
	}

	if kind == KindString {
		return NewString(payload), rest, nil
	}

	list := &List{}
	for len(payload) > 0 {
		var child Node
		child, payload, err = decodeItem(payload)
		if err != nil {
			return nil, nil, err
		}

		list.children = append(list.children, child)
	}

	return list, rest, nil
}
