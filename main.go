package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"mediagrab/cmd"
)

func main() {
	// Load .env if present; environment variables may also be set directly.
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, relying on environment variables")
	}
	cmd.Execute()
}
