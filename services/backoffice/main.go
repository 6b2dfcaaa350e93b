package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/policydesk/backoffice/backend"
	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/core/logger"
	"github.com/policydesk/backoffice/events"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type Service struct {
	Postgres      string        `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	Port          string        `env:"PORT,default=:3000" description:"the address the HTTP server listens on"`
	JWTSecret     string        `env:"JWT_SECRET,required" description:"the secret for signing bearer tokens"`
	TokenValidity time.Duration `env:"TOKEN_VALIDITY,default=24h" description:"the lifetime of issued bearer tokens"`
	KafkaBrokers  string        `env:"KAFKA_BROKERS,default=" description:"comma-separated Kafka brokers for mutation events; empty disables Kafka"`
	KafkaTopic    string        `env:"KAFKA_TOPIC,default=backoffice-mutations" description:"the Kafka topic for mutation events"`
	LogLevel      string        `env:"LOG_LEVEL,default=info" description:"the logrus log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	logLevel, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logLevel)
	rlog := logger.Default()

	db := csql.Open(service.Postgres)
	defer db.Close()

	var notifier core.Notifier = events.LogNotifier{}
	if service.KafkaBrokers != "" {
		kafkaNotifier := events.NewKafkaNotifier(strings.Split(service.KafkaBrokers, ","), service.KafkaTopic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	router := mux.NewRouter()
	backend.New(&backend.Builder{
		DB:            db,
		Router:        router,
		JWTSecret:     service.JWTSecret,
		TokenValidity: service.TokenValidity,
		Notifier:      notifier,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	server := &http.Server{
		Addr:         service.Port,
		Handler:      cors(handlers.CompressHandler(router)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	rlog.Infoln("listen on port", service.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		rlog.WithError(err).Fatal("server stopped")
	}
}
