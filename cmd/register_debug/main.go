// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"net/http"
	"time"

	adis16460 "github.com/tdenningTRI/ADIS16460"
	"github.com/tdenningTRI/ADIS16460/internal/app"
	"github.com/tdenningTRI/ADIS16460/internal/config"
)

func main() {
	log.Println("starting ADIS16460 register debug tool (standalone)")

	if err := config.InitGlobal("adis16460_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Opening IMU...")
	dev, err := adis16460.Open(cfg.IMUSPIDevice, cfg.IMUDataReadyPin, &adis16460.Opts{
		SampleRateHz: cfg.IMUSampleRate,
		Taps:         cfg.IMUFilterTaps,
	})
	if err != nil {
		log.Fatalf("failed to open IMU: %v", err)
	}
	defer dev.Close()

	if id, err := dev.ProdID(); err != nil {
		log.Printf("Warning: PROD_ID read failed: %v", err)
	} else if id != adis16460.ProductID {
		log.Printf("Warning: PROD_ID 0x%04X, expected 0x%04X", id, adis16460.ProductID)
	} else {
		log.Printf("PROD_ID verified: 0x%04X", id)
	}

	// Keep /api/imu fresh while the tool is open
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.IMUPollInterval) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := dev.Poll(); err != nil {
				log.Printf("poll error: %v", err)
			}
		}
	}()

	http.HandleFunc("/ws", app.NewRegisterDebugHandler(dev))

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", app.NewIMUDataHandler(dev))

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := ":8081"
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost:8081 in your browser")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
