//go:build linux

// Command fsal-exportd bootstraps a single export from a config file or
// flags, then exercises its capability set end to end (mkdir, lookup,
// readdir, release) as a smoke check — standing in for the NFS protocol
// layer that would otherwise drive it in production.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
