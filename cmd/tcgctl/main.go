package main

import (
	"github.com/tcgconnect/tcgconnect-go/internal/cli"
)

func main() {
	cli.Execute()
}
