package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `# ADIS16460 node configuration
MQTT_BROKER = tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER = imu_producer

TOPIC_IMU = sensors/imu
TOPIC_IMU_RAW = sensors/imu_raw

IMU_SPI_DEVICE = /dev/spidev0.0
IMU_DATA_READY_PIN = 25
IMU_SAMPLE_RATE = 1024
IMU_FILTER_TAPS = 4

IMU_POLL_INTERVAL = 1
CONSOLE_LOG_INTERVAL = 1000

WEB_SERVER_PORT = 8080
DISPLAY_UPDATE_INTERVAL = 200
SERIAL_PORT = /dev/ttyAMA0
SERIAL_BAUD_RATE = 115200
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("broker = %q", cfg.MQTTBroker)
	}
	if cfg.IMUSPIDevice != "/dev/spidev0.0" || cfg.IMUDataReadyPin != "25" {
		t.Errorf("hardware = %q / %q", cfg.IMUSPIDevice, cfg.IMUDataReadyPin)
	}
	if cfg.IMUSampleRate != 1024 || cfg.IMUFilterTaps != 4 {
		t.Errorf("rate/taps = %d/%d", cfg.IMUSampleRate, cfg.IMUFilterTaps)
	}
	if cfg.DisplayUpdateInterval != 200 {
		t.Errorf("display interval = %d", cfg.DisplayUpdateInterval)
	}
	if cfg.SerialBaudRate != 115200 {
		t.Errorf("baud = %d", cfg.SerialBaudRate)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY = 1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	cases := []string{
		"IMU_SAMPLE_RATE = 0\n",
		"IMU_SAMPLE_RATE = 4096\n",
		"IMU_FILTER_TAPS = 8\n",
		"IMU_FILTER_TAPS = -1\n",
	}
	for _, line := range cases {
		if _, err := Load(writeConfig(t, validConfig+line)); err == nil {
			t.Errorf("accepted %q", strings.TrimSpace(line))
		}
	}
}

func TestLoadRequiresBroker(t *testing.T) {
	stripped := strings.Replace(validConfig, "MQTT_BROKER = tcp://localhost:1883\n", "", 1)
	_, err := Load(writeConfig(t, stripped))
	if err == nil || !strings.Contains(err.Error(), "MQTT_BROKER") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, "MQTT_BROKER tcp://localhost:1883\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config line") {
		t.Fatalf("err = %v", err)
	}
}
