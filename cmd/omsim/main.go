package main

import (
	"github.com/byzantine-generals/omsim/cmd/omsim/cmd"
)

func main() {
	cmd.Execute()
}
