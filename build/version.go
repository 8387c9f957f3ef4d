package build

import (
	"fmt"
	"strings"
)

// Commit is the git description of the source tree, injected at link time
// with -ldflags "-X github.com/coinforge/walletcore/build.Commit=...".
var Commit string

const (
	// AppMajor is the major version of walletcore.
	AppMajor uint = 0

	// AppMinor is the minor version of walletcore.
	AppMinor uint = 4

	// AppPatch is the patch version of walletcore.
	AppPatch uint = 0

	// AppPreRelease is appended after a dash when non-empty. It may only
	// use characters allowed in a semver pre-release identifier.
	AppPreRelease = "beta"
)

// preReleaseAlphabet holds the characters semver allows in a pre-release.
const preReleaseAlphabet = "-.0123456789" +
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func init() {
	if i := strings.IndexFunc(AppPreRelease, func(r rune) bool {
		return !strings.ContainsRune(preReleaseAlphabet, r)
	}); i >= 0 {
		panic(fmt.Sprintf("invalid pre-release %q at offset %d",
			AppPreRelease, i))
	}
}

// Version returns the semantic version string, e.g. 0.4.0-beta.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", AppMajor, AppMinor, AppPatch)
	if AppPreRelease == "" {
		return v
	}

	return v + "-" + AppPreRelease
}
