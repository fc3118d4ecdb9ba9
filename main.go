package main

import (
	"context"
	"log"
	"time"

	"github.com/Shopify/sarama"
	"github.com/streadway/amqp"

	"food-marketplace/api/config"
	"food-marketplace/api/dispatch"
	"food-marketplace/api/handlers"
	"food-marketplace/api/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	st := store.New(cfg.Redis)
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	rabbit, err := connectRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}

	kafka, err := connectKafka(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatal("Failed to create Kafka producer:", err)
	}

	server := handlers.NewServer(cfg, st, rabbit, kafka)
	app := server.App()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := dispatch.New(cfg, st, rabbit)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Dispatcher stopped: %v", err)
		}
	}()
	go dispatcher.CheckRiderStatus(ctx)
	go handlers.ServeMetrics(cfg.Metrics.Addr)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}

func connectRabbitMQ(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		log.Printf("Attempting to connect to RabbitMQ (attempt %d/5)...", i+1)
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		if i < 4 {
			log.Printf("Failed to connect to RabbitMQ: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
		}
	}
	return nil, err
}

func connectKafka(brokers []string) (sarama.SyncProducer, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, kafkaConfig)
}
