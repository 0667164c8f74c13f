// Package main is the entry point for the oracles CLI.
//
// The stand-alone binary has no registered suites; it views stored reports
// and runs the purity analysis. Programs generating assertions embed the
// command through gooze.dev/pkg/oracles/cmd and pkg/oracle.
package main

import "gooze.dev/pkg/oracles/cmd"

func main() {
	cmd.Execute()
}
