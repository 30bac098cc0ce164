package main

import (
	"os"

	"github.com/worxstance/worxstance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
