// Package version holds the CLI version, settable at build time with
// -ldflags "-X github.com/jberros/btcvol-cli/internal/version.Version=...".
package version

var Version = "1.1.0"
