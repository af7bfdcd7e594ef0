package main

import (
	"log"

	"github.com/patric-chuzhbe/ainotes/internal/app"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

func main() {
	log.Printf("Build version: %s\n", buildVersion)
	log.Printf("Build date: %s\n", buildDate)
	log.Printf("Build commit: %s\n", buildCommit)

	theApp, err := app.New()
	if err != nil {
		log.Fatalf("error initializing the application: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
