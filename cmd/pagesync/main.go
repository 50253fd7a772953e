package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; the environment may already be populated
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("No .env file loaded")
	}

	Execute()
}
