package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
)

// Publishes fake wearable telemetry so the backend can be exercised without
// hardware. Roughly one message in five carries an abnormal reading.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using system environment variables")
	}

	broker := getEnv("MQTT_BROKER", "tcp://broker.hivemq.com:1883")
	topic := getEnv("MQTT_TOPIC", "seniorcare/monitor/data")
	deviceID := getEnv("DEFAULT_DEVICE_ID", "ESP32_SeniorCare_001")

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("SeniorCare_Sim_%04d", rand.Intn(10000))).
		SetConnectTimeout(4 * time.Second)

	client := paho.NewClient(opts)
	fmt.Printf("Connecting to %s...\n", broker)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Connection failed: %v", token.Error())
	}
	defer client.Disconnect(250)
	fmt.Println("✓ Connected")
	fmt.Printf("Publishing to %s every 2s — Ctrl+C to stop\n\n", topic)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			payload, _ := json.Marshal(samplePayload(deviceID))
			token := client.Publish(topic, 0, false, payload)
			token.Wait()
			if token.Error() != nil {
				log.Printf("publish failed: %v", token.Error())
				continue
			}
			fmt.Printf("  → %s\n", payload)

		case <-sigChan:
			fmt.Println("\nDone")
			return
		}
	}
}

func samplePayload(deviceID string) map[string]any {
	temperature := 36.2 + rand.Float64()*1.2 // normal band
	o2 := 96 + rand.Intn(4)
	score := 82 + rand.Intn(18)
	fall := false

	// occasionally inject an incident
	switch rand.Intn(5) {
	case 0:
		temperature = 38.0 + rand.Float64()*1.5
		score = 50 + rand.Intn(25)
	case 1:
		o2 = 88 + rand.Intn(6)
		score = 55 + rand.Intn(20)
	case 2:
		fall = true
		score = 30 + rand.Intn(25)
	}

	return map[string]any{
		"deviceId":      deviceID,
		"temperature":   round1(temperature),
		"humidity":      round1(40 + rand.Float64()*30),
		"o2Saturation":  o2,
		"fallDetected":  fall,
		"checkinStatus": rand.Intn(10) == 0,
		"healthScore":   score,
		"ledStatus":     fall,
	}
}

func round1(f float64) float64 {
	return float64(int(f*10)) / 10
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
