// Command cachesim simulates a multi-level cache hierarchy.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
