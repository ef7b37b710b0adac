package main

import (
	"fmt"
	"os"

	"github.com/payshield/payment-triage/cmd/triage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
