//go:build !linux

package main

import "io"

// isTerminal is not probed on non-Linux platforms.
func isTerminal(_ io.Writer) bool { return false }
