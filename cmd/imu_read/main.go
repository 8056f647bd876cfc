package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	adis16460 "github.com/tdenningTRI/ADIS16460"
)

func main() {
	spiDev := flag.String("spi", adis16460.DefaultSpiDev, "SPI device path")
	readyPin := flag.String("pin", adis16460.DefaultReadyPin, "data ready GPIO pin name")
	rate := flag.Int("rate", 2048, "sample rate in Hz (1-2048)")
	taps := flag.Int("taps", 4, "filter size exponent, taps = 2^N (0-7)")
	interval := flag.Duration("interval", time.Second, "print interval")
	duration := flag.Duration("duration", 0, "exit after this long, 0 runs until interrupted")
	flag.Parse()

	log.Println("starting ADIS16460 reader")

	dev, err := adis16460.Open(*spiDev, *readyPin, &adis16460.Opts{
		SampleRateHz: *rate,
		Taps:         *taps,
	})
	if err != nil {
		log.Fatalf("failed to open IMU: %v", err)
	}
	defer dev.Close()

	if id, err := dev.ProdID(); err != nil {
		log.Printf("PROD_ID read failed: %v", err)
	} else {
		log.Printf("PROD_ID: 0x%04X", id)
	}
	if diag, err := dev.DiagStat(); err != nil {
		log.Printf("DIAG_STAT read failed: %v", err)
	} else if diag != 0 {
		log.Printf("WARNING: DIAG_STAT 0x%04X, device reports fault flags", diag)
	}
	log.Printf("sample rate %d Hz, decimation %d, filter taps %d",
		dev.SampleRate(), dev.DecRate(), dev.Taps())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	poll := time.NewTicker(time.Millisecond)
	defer poll.Stop()
	show := time.NewTicker(*interval)
	defer show.Stop()

	var done <-chan time.Time
	if *duration > 0 {
		done = time.After(*duration)
	}

	for {
		select {
		case <-sig:
			log.Println("shutting down")
			return
		case <-done:
			log.Println(dev.Latest().String())
			log.Println("done")
			return
		case <-poll.C:
			if _, err := dev.Poll(); err != nil {
				log.Printf("poll error: %v", err)
			}
		case <-show.C:
			log.Println(dev.Latest().String())
		}
	}
}
