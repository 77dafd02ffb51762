package main

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gridwatch/powerdash/internal/cache"
	"github.com/gridwatch/powerdash/internal/config"
	"github.com/gridwatch/powerdash/internal/database"
	powerhttp "github.com/gridwatch/powerdash/internal/http"
	"github.com/gridwatch/powerdash/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	svcs := service.New(db)
	store := cache.New(config.RedisAddr())
	defer store.Close()

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect failed")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := svcs.Readings.FromMQTT(msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Msg("ingest failed")
		}
	}
	if token := client.Subscribe(config.MQTTTopic(), 0, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}
	log.Info().Str("topic", config.MQTTTopic()).Msg("ingesting readings")

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	powerhttp.Register(app, svcs, store)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("collector api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
