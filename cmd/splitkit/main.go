package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/splitkit-dev/splitkit/internal/commands"
)

func main() {
	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
