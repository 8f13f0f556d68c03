package main

import (
	"github.com/jjtimmons/seqcmp/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
