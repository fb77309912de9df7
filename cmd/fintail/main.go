// Package main provides the entry point for the fintail CLI tool.
package main

import "github.com/fintail/fintail/cmd/fintail/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
