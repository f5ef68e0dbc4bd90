package main

import (
	"fmt"
	"os"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/cli"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	os.Exit(cli.Execute(cfg, os.Args[1:]))
}
