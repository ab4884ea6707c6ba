package main

import (
	"github.com/habiliai/agentloop/cmd/agentloop/cmd"
)

func main() {
	cmd.Execute()
}
