// Package rlp implements the Recursive Length Prefix serialization as a tree
// of string and list nodes.
package rlp

import (
	"fmt"
	"strings"

	"github.com/coinforge/walletcore/bigint"
	"github.com/coinforge/walletcore/errorcodes"
	gethrlp "github.com/ethereum/go-ethereum/rlp"
)

// Kind distinguishes the two node variants.
type Kind uint8

const (
	// KindString is a byte string node.
	KindString Kind = iota

	// KindList is a list node.
	KindList
)

// String returns a human readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is either a *String or a *List. The interface is sealed, so a type
// switch over the two variants is exhaustive.
type Node interface {
	// Kind returns the variant of the node.
	Kind() Kind

	sealed()
}

// String is a node carrying an opaque byte payload.
type String struct {
	data []byte
}

// A compile-time check to ensure String implements Node.
var _ Node = (*String)(nil)

// NewString returns a string node holding a copy of b.
func NewString(b []byte) *String {
	return &String{data: append([]byte(nil), b...)}
}

// NewStringFromText returns a string node holding the UTF-8 bytes of s.
func NewStringFromText(s string) *String {
	return &String{data: []byte(s)}
}

// NewUint returns the minimal big-endian encoding of v. Zero is the empty
// string.
func NewUint(v uint64) *String {
	// AppendUint64 always yields a well formed string item.
	content, _, _ := gethrlp.SplitString(gethrlp.AppendUint64(nil, v))

	return NewString(content)
}

// NewBigInt returns the minimal big-endian magnitude of v. Negative values
// have no RLP representation.
func NewBigInt(v bigint.BigInt) (*String, error) {
	if v.IsNegative() {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"cannot encode negative integer %v", v,
		)
	}

	if v.IsZero() {
		return &String{}, nil
	}

	return &String{data: v.ToByteArray()}, nil
}

// Kind returns KindString.
func (s *String) Kind() Kind {
	return KindString
}

func (s *String) sealed() {}

// Bytes returns a copy of the payload.
func (s *String) Bytes() []byte {
	return append([]byte(nil), s.data...)
}

// Text returns the payload as a string.
func (s *String) Text() string {
	return string(s.data)
}

// Uint64 interprets the payload as a big-endian unsigned integer.
func (s *String) Uint64() (uint64, error) {
	if len(s.data) > 8 {
		return 0, errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"integer of %d bytes overflows uint64", len(s.data),
		)
	}
	if len(s.data) > 0 && s.data[0] == 0 {
		return 0, errorcodes.New(
			errorcodes.ErrCodeInvalidFormat,
			"integer has leading zero bytes",
		)
	}

	var v uint64
	for _, b := range s.data {
		v = v<<8 | uint64(b)
	}

	return v, nil
}

// BigInt interprets the payload as a big-endian unsigned integer.
func (s *String) BigInt() bigint.BigInt {
	return bigint.FromBytes(s.data, false)
}

// Append always fails: only lists have children.
func (s *String) Append(...Node) error {
	return errorcodes.New(
		errorcodes.ErrCodeMissingImplementation,
		"cannot append children to an rlp string",
	)
}

// List is a node holding an ordered sequence of children.
type List struct {
	children []Node
}

// A compile-time check to ensure List implements Node.
var _ Node = (*List)(nil)

// NewList returns a list node holding children.
func NewList(children ...Node) *List {
	return &List{children: append([]Node(nil), children...)}
}

// Kind returns KindList.
func (l *List) Kind() Kind {
	return KindList
}

func (l *List) sealed() {}

// Append adds children to the end of the list and returns the list.
func (l *List) Append(children ...Node) *List {
	l.children = append(l.children, children...)
	return l
}

// Len returns the number of direct children.
func (l *List) Len() int {
	return len(l.children)
}

// Get returns the i-th child.
func (l *List) Get(i int) (Node, error) {
	if i < 0 || i >= len(l.children) {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeOutOfRange,
			"index %d out of range for list of %d", i,
			len(l.children),
		)
	}

	return l.children[i], nil
}

// Items returns a copy of the children slice.
func (l *List) Items() []Node {
	return append([]Node(nil), l.children...)
}

// Match calls onString or onList depending on the variant of n.
func Match[R any](n Node, onString func(*String) R, onList func(*List) R) R {
	switch v := n.(type) {
	case *String:
		return onString(v)

	case *List:
		return onList(v)

	default:
		panic(fmt.Sprintf("rlp: unknown node type %T", n))
	}
}

// StringValue returns the payload of a string node. A list fails with a
// missing-implementation error.
func StringValue(n Node) ([]byte, error) {
	s, ok := n.(*String)
	if !ok {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeMissingImplementation,
			"string value of rlp %v", n.Kind(),
		)
	}

	return s.Bytes(), nil
}

// Children returns the children of a list node. A string fails with a
// missing-implementation error.
func Children(n Node) ([]Node, error) {
	l, ok := n.(*List)
	if !ok {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeMissingImplementation,
			"children of rlp %v", n.Kind(),
		)
	}

	return l.Items(), nil
}

// Dump renders n as an indented tree for debugging.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)

	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)

	Match(n,
		func(s *String) struct{} {
			fmt.Fprintf(sb, "%sstring(%d) %x\n", indent,
				len(s.data), s.data)
			return struct{}{}
		},
		func(l *List) struct{} {
			fmt.Fprintf(sb, "%slist(%d)\n", indent, len(l.children))
			for _, child := range l.children {
				dump(sb, child, depth+1)
			}
			return struct{}{}
		},
	)
}
