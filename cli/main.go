package main

import (
	"ocm.software/open-component-model/bindings/go/fnv/cli/cmd"
)

func main() {
	cmd.Execute()
}
