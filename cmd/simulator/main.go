package main

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/config"
	"github.com/gridwatch/powerdash/internal/domain"
)

// Publishes a synthetic household load curve: a slow daily swell with noise
// on top, so the analysis pages have something to bucket.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect failed")
	}
	defer client.Disconnect(250)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	energy := 1000.0 // cumulative register starting point
	log.Info().Str("topic", config.MQTTTopic()).Msg("publishing synthetic readings")

	for {
		select {
		case now := <-ticker.C:
			r := nextReading(now, &energy)
			payload, _ := json.Marshal(r)
			token := client.Publish(config.MQTTTopic(), 0, false, payload)
			token.Wait()
		case <-sig:
			log.Info().Msg("simulation stopped")
			return
		}
	}
}

func nextReading(now time.Time, energy *float64) domain.PowerReading {
	hour := float64(now.Hour()) + float64(now.Minute())/60
	// Base load plus an evening peak around 19:00.
	base := 300 + 900*math.Exp(-math.Pow(hour-19, 2)/8)
	power := base + rand.Float64()*150

	voltage := 228 + rand.Float64()*6
	pf := 0.90 + rand.Float64()*0.08
	current := power / (voltage * pf)
	*energy += power / 1000 * 2.0 / 3600 // 2s tick

	return domain.PowerReading{
		Voltage:     voltage,
		Current:     current,
		PowerWatts:  power,
		EnergyKWh:   *energy,
		Frequency:   49.9 + rand.Float64()*0.2,
		PowerFactor: pf,
		Timestamp:   now,
	}
}
