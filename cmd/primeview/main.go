// Primeview is an interactive viewer of precomputed datasets: points on an
// integer grid joined by weighted relations.
//
// Usage:
//
//	primeview view [selector]
//	primeview snapshot -o out.png <selector>
//	primeview repl
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "primeview:", err)
		os.Exit(1)
	}
}
