package main

import (
	"log"

	"github.com/MrSnakeDoc/shelf/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultOpener).Execute(); err != nil {
		log.Fatalf("❌ shelf: %v", err)
	}
}
