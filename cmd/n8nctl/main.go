package main

import (
	"github.com/n8nkit/n8nctl/pkg/cli/cmd"
)

func main() {
	cmd.Execute()
}
