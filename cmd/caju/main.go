package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/habitaplan/caju/cmd/caju/commands"
)

func main() {
	// a local .env is optional, secrets usually come from the scheduler
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
