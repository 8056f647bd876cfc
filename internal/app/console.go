package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tdenningTRI/ADIS16460/internal/config"
)

// RunConsole subscribes to the sample topics and prints every message until
// interrupted.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	imuToken := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p imuPayload
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: imu unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[IMU]  gx=%+9.4f gy=%+9.4f gz=%+9.4f  ax=%+9.4f ay=%+9.4f az=%+9.4f  temp=%5.2f\n",
			p.Gx, p.Gy, p.Gz, p.Ax, p.Ay, p.Az, p.Temp,
		)
	})
	imuToken.Wait()
	if imuToken.Error() != nil {
		return imuToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicIMU)

	if cfg.TopicIMURaw != "" {
		rawToken := client.Subscribe(cfg.TopicIMURaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p imuRawPayload
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("console: raw unmarshal error: %v", err)
				return
			}
			fmt.Printf(
				"[RAW]  gx=%11d gy=%11d gz=%11d  ax=%11d ay=%11d az=%11d  temp=%6d diag=0x%04X\n",
				p.Gx, p.Gy, p.Gz, p.Ax, p.Ay, p.Az, p.Temp, p.Diag,
			)
		})
		rawToken.Wait()
		if rawToken.Error() != nil {
			return rawToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicIMURaw)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
