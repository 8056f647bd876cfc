package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/tdenningTRI/ADIS16460/internal/config"
)

// RunSerialStream forwards published samples as JSON lines over a UART,
// one line per sample, for downstream loggers or microcontrollers.
func RunSerialStream() error {
	cfg := config.Get()
	if cfg.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is not configured")
	}

	// ---- 1) Open the output serial port ----
	serialOpts := serial.OpenOptions{
		PortName:        cfg.SerialPort,
		BaudRate:        uint(cfg.SerialBaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("serial: port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	// ---- 2) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDSerial)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("serial: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 3) Forward each sample as one JSON line ----
	token := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line := append(append([]byte{}, msg.Payload()...), '\n')
		if _, err := port.Write(line); err != nil {
			log.Printf("serial: write error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("serial: subscribed to %s", cfg.TopicIMU)

	// Block until interrupted
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	client.Disconnect(250)
	log.Println("serial: shut down")
	return nil
}
