package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/skilldeck/lms-backend/api"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/log"
	"github.com/skilldeck/lms-backend/notifications"
	"github.com/skilldeck/lms-backend/notifications/smtp"
	"github.com/skilldeck/lms-backend/notifications/twilio"
	"github.com/skilldeck/lms-backend/objectstorage"
	"github.com/skilldeck/lms-backend/stripe"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.String("mongo-url", "", "the URL of the MongoDB server")
	flag.String("mongo-db", "lms-backend", "the name of the MongoDB database")
	flag.String("stripe-api-key", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.StringP("webapp-url", "w", "http://localhost:5173", "frontend web application URL")
	flag.String("server-url", "http://localhost:8080", "URL where this server is reachable")
	flag.String("currency", "usd", "checkout currency")
	flag.Float64("currency-divisor", stripe.DefaultExchangeDivisor, "divisor applied to course prices before charging")
	flag.String("smtp-server", "", "SMTP server")
	flag.Int("smtp-port", 587, "SMTP port")
	flag.String("smtp-username", "", "SMTP username")
	flag.String("smtp-password", "", "SMTP password")
	flag.String("email-from-address", "", "email from address")
	flag.String("email-from-name", "SkillDeck", "email from name")
	flag.String("twilio-account-sid", "", "Twilio account SID")
	flag.String("twilio-auth-token", "", "Twilio auth token")
	flag.String("twilio-from-number", "", "Twilio sender number")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("LMS")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	log.Init(viper.GetString("log-level"), "stdout")
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	stripeAPIKey := viper.GetString("stripe-api-key")
	stripeWebhookSecret := viper.GetString("stripe-webhook-secret")
	if stripeAPIKey == "" || stripeWebhookSecret == "" {
		log.Fatal("stripe-api-key and stripe-webhook-secret are required")
	}
	webAppURL := viper.GetString("webapp-url")
	serverURL := viper.GetString("server-url")
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// create the email notification service if the SMTP server is configured
	var mailService notifications.NotificationService
	if smtpServer := viper.GetString("smtp-server"); smtpServer != "" {
		mailService = new(smtp.Email)
		if err := mailService.New(&smtp.Config{
			FromName:     viper.GetString("email-from-name"),
			FromAddress:  viper.GetString("email-from-address"),
			SMTPServer:   smtpServer,
			SMTPPort:     viper.GetInt("smtp-port"),
			SMTPUsername: viper.GetString("smtp-username"),
			SMTPPassword: viper.GetString("smtp-password"),
		}); err != nil {
			log.Fatalf("could not create the email service: %v", err)
		}
		log.Infow("email service created", "server", smtpServer)
	}
	// create the SMS notification service if the Twilio account is configured
	var smsService notifications.NotificationService
	if accountSid := viper.GetString("twilio-account-sid"); accountSid != "" {
		smsService = new(twilio.SMS)
		if err := smsService.New(&twilio.Config{
			AccountSid: accountSid,
			AuthToken:  viper.GetString("twilio-auth-token"),
			FromNumber: viper.GetString("twilio-from-number"),
		}); err != nil {
			log.Fatalf("could not create the SMS service: %v", err)
		}
		log.Infow("SMS service created", "from", viper.GetString("twilio-from-number"))
	}
	// create the Stripe service
	stripeService, err := stripe.NewService(&stripe.Config{
		APIKey:          stripeAPIKey,
		WebhookSecret:   stripeWebhookSecret,
		Currency:        viper.GetString("currency"),
		ExchangeDivisor: viper.GetFloat64("currency-divisor"),
		WebAppURL:       webAppURL,
	}, database, mailService, smsService)
	if err != nil {
		log.Fatalf("could not create the Stripe service: %v", err)
	}
	// create the object storage client
	objectStorage, err := objectstorage.New(&objectstorage.Config{
		DB:        database,
		ServerURL: serverURL,
	})
	if err != nil {
		log.Fatalf("could not create the object storage client: %v", err)
	}
	// create the local API server
	api.New(&api.Config{
		Host:          host,
		Port:          port,
		Secret:        secret,
		DB:            database,
		Stripe:        stripeService,
		WebAppURL:     webAppURL,
		ServerURL:     serverURL,
		ObjectStorage: objectStorage,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
