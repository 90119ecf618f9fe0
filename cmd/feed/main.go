package main

import (
	"fmt"
	"os"
)

var app srv

func main() {
	app.loadApp()
	if err := app.cli.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
