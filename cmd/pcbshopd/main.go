package main

import (
	"os"

	"github.com/pcbshop/boardopts/pkg/api"
)

func main() {
	// Serve logs its own failures.
	if err := api.Serve(); err != nil {
		os.Exit(1)
	}
}
