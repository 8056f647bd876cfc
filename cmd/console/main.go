package main

import (
	"log"

	"github.com/tdenningTRI/ADIS16460/internal/app"
	"github.com/tdenningTRI/ADIS16460/internal/config"
)

func main() {
	log.Println("starting ADIS16460 console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("adis16460_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
