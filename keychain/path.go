package keychain

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/coinforge/walletcore/errorcodes"
)

const (
	// BIP0044Purpose is the purpose level of BIP-44 account paths.
	BIP0044Purpose = 44

	// BIP0084Purpose is the purpose level of native segwit account paths.
	BIP0084Purpose = 84

	// CoinTypeBitcoin is the SLIP-44 coin type of bitcoin mainnet.
	CoinTypeBitcoin = 0

	// CoinTypeTestnet is the SLIP-44 coin type shared by all test
	// networks.
	CoinTypeTestnet = 1

	// CoinTypeEthereum is the SLIP-44 coin type of ethereum.
	CoinTypeEthereum = 60
)

// Path is a BIP-32 derivation path. Hardened indexes have the
// hdkeychain.HardenedKeyStart bit set.
type Path []uint32

// Hardened returns the hardened form of index i.
func Hardened(i uint32) uint32 {
	return i + hdkeychain.HardenedKeyStart
}

// BIP44 returns m/44'/coin'/account'/change/index.
func BIP44(coin, account, change, index uint32) Path {
	return Path{
		Hardened(BIP0044Purpose), Hardened(coin), Hardened(account),
		change, index,
	}
}

// ParsePath parses a path such as "m/44'/0'/0'/0/5". Hardened levels may be
// marked with ', h or H. "m" alone is the empty path.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if parts[0] != "m" {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"path %q must start with m", s,
		)
	}

	path := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := false
		switch {
		case strings.HasSuffix(part, "'"),
			strings.HasSuffix(part, "h"),
			strings.HasSuffix(part, "H"):

			hardened = true
			part = part[:len(part)-1]
		}

		// ParseUint rejects signs and empty levels.
		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil || idx >= hdkeychain.HardenedKeyStart {
			return nil, errorcodes.Newf(
				errorcodes.ErrCodeInvalidArgument,
				"invalid path level %q in %q", part, s,
			)
		}

		level := uint32(idx)
		if hardened {
			level = Hardened(level)
		}
		path = append(path, level)
	}

	return path, nil
}

// String renders the path with ' marking hardened levels.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")

	for _, level := range p {
		sb.WriteByte('/')
		if level >= hdkeychain.HardenedKeyStart {
			sb.WriteString(strconv.FormatUint(
				uint64(level-hdkeychain.HardenedKeyStart), 10,
			))
			sb.WriteByte('\'')

			continue
		}

		sb.WriteString(strconv.FormatUint(uint64(level), 10))
	}

	return sb.String()
}

// Child returns a copy of p extended by index i.
func (p Path) Child(i uint32) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)

	return append(child, i)
}
