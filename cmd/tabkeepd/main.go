package main

import (
	"log"

	"github.com/tabkeep/tabkeep/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("tabkeepd failed to start: %v", err)
	}
}
