// Package buildinfo reports which taxonscope build is running.
//
// Release builds stamp the three variables with ldflags:
//
//	go build -ldflags "\
//	    -X github.com/matzehuels/taxonscope/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/taxonscope/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/taxonscope/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/taxonscope
//
// Binaries built with `go install module@version` carry no ldflags; for those
// the module version recorded by the Go toolchain is used instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Stamped at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if Version != "dev" {
		return
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		Version = moduleVersion(bi, Version)
	}
}

// moduleVersion returns the main module's version, or fallback for
// development builds where the toolchain records "(devel)".
func moduleVersion(bi *debug.BuildInfo, fallback string) string {
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return fallback
}

// String describes the build on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template for the root command.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
