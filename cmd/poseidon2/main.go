// Command poseidon2 computes the Poseidon2 t=2 compression over BLS12-381 Fr,
// dumps its round constants and lowered programs, and renders Solidity.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
