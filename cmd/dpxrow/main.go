// Command dpxrow inspects, decodes, encodes, and round-trips DPX image
// elements.
//
// Usage:
//
//	dpxrow inspect <file.dpx>               Print header + element summary
//	dpxrow decode <file.dpx> <out.raw>       Dump one element's samples
//	dpxrow encode <samples.raw> <out.dpx>    Pack samples into a DPX file
//	dpxrow roundtrip <file.dpx>              Decode every row then re-encode,
//	                                          verifying a byte-exact match
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "dpxrow",
		Short: "Inspect and round-trip DPX image-element rows",
	}
	root.AddCommand(inspectCommand())
	root.AddCommand(decodeCommand())
	root.AddCommand(encodeCommand())
	root.AddCommand(roundtripCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
