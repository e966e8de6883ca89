package main

import (
	"log"
	"property-explorer/internal"

	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", "", "path to .env file (default: ./.env)")
	pflag.Parse()

	application, err := internal.NewApp(*envFile)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application run failed: %v", err)
	}
}
