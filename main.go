package main

import (
	"os"

	"github.com/kanda-lab/chatreport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
