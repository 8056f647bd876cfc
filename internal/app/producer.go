package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	adis16460 "github.com/tdenningTRI/ADIS16460"
	"github.com/tdenningTRI/ADIS16460/internal/config"
	"github.com/tdenningTRI/ADIS16460/internal/sim"
)

// imuPayload is the scaled sample as published on TOPIC_IMU.
type imuPayload struct {
	adis16460.Sample
	Time string `json:"time"`
}

// imuRawPayload is the unscaled sample as published on TOPIC_IMU_RAW.
type imuRawPayload struct {
	adis16460.RawSample
	Time string `json:"time"`
}

// sampleSource is what the publish loop polls: the hardware driver or the
// synthetic source.
type sampleSource interface {
	Next() (adis16460.RawSample, bool, error)
}

// devSource adapts the driver's poll-and-latest API to sampleSource.
type devSource struct {
	dev *adis16460.Dev
}

func (s *devSource) Next() (adis16460.RawSample, bool, error) {
	fresh, err := s.dev.Poll()
	if err != nil || !fresh {
		return adis16460.RawSample{}, false, err
	}
	return s.dev.LatestRaw(), true, nil
}

// RunProducer polls the sensor and publishes every fresh sample over MQTT,
// scaled on TOPIC_IMU and raw counts on TOPIC_IMU_RAW.
func RunProducer(simulate bool) error {
	log.Println("starting ADIS16460 producer")

	cfg := config.Get()

	var source sampleSource
	if simulate {
		log.Println("producer: using synthetic sample source")
		source = sim.NewSource(cfg.IMUSampleRate)
	} else {
		dev, err := adis16460.Open(cfg.IMUSPIDevice, cfg.IMUDataReadyPin, &adis16460.Opts{
			SampleRateHz: cfg.IMUSampleRate,
			Taps:         cfg.IMUFilterTaps,
		})
		if err != nil {
			log.Fatalf("producer: IMU init: %v", err)
			return err
		}
		defer dev.Close()

		if id, err := dev.ProdID(); err != nil {
			log.Printf("producer: PROD_ID read failed: %v", err)
		} else if id != adis16460.ProductID {
			log.Printf("producer: WARNING: PROD_ID 0x%04X, expected 0x%04X", id, adis16460.ProductID)
		} else {
			log.Printf("producer: ADIS16460 detected, rate %d Hz, dec %d, taps %d",
				dev.SampleRate(), dev.DecRate(), dev.Taps())
		}
		if diag, err := dev.DiagStat(); err != nil {
			log.Printf("producer: DIAG_STAT read failed: %v", err)
		} else if diag != 0 {
			log.Printf("producer: WARNING: DIAG_STAT 0x%04X, device reports fault flags", diag)
		}
		source = &devSource{dev: dev}
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.IMUPollInterval) * time.Millisecond)
	defer ticker.Stop()

	published := 0
	lastLog := time.Now()
	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond

	for t := range ticker.C {
		raw, fresh, err := source.Next()
		if err != nil {
			log.Printf("producer: sample read error: %v", err)
			continue
		}
		if !fresh {
			continue
		}

		sample := raw.Scaled()
		stamp := t.Format(time.RFC3339Nano)

		if payload, err := json.Marshal(imuPayload{Sample: sample, Time: stamp}); err != nil {
			log.Printf("producer: marshal error: %v", err)
		} else if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (%s): %v", cfg.TopicIMU, token.Error())
			continue
		}

		if cfg.TopicIMURaw != "" {
			if payload, err := json.Marshal(imuRawPayload{RawSample: raw, Time: stamp}); err != nil {
				log.Printf("producer: raw marshal error: %v", err)
			} else {
				client.Publish(cfg.TopicIMURaw, 0, true, payload)
			}
		}

		published++
		if time.Since(lastLog) >= logEvery {
			log.Printf("producer: %d samples published | %s", published, sample)
			published = 0
			lastLog = time.Now()
		}
	}
	return nil
}
