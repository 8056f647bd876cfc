// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/tdenningTRI/ADIS16460/internal/app"
	"github.com/tdenningTRI/ADIS16460/internal/config"
)

func main() {
	configPath := flag.String("config", "./adis16460_config.txt", "path to configuration file")
	simulate := flag.Bool("sim", false, "publish simulated samples instead of reading hardware")
	flag.Parse()

	log.Println("starting ADIS16460 producer (SPI → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(*simulate); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
