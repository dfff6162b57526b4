package main

import (
	"os"

	"github.com/zaykha/JLPT-flashcard-sub001/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
