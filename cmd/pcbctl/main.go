package main

import (
	"github.com/pcbshop/boardopts/pkg/cli"
)

func main() {
	cli.Execute()
}
