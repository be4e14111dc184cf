// Package api provides the HTTP API of the course purchase backend. It
// exposes user registration and JWT authentication, course checkout and
// purchase status queries, the payment provider webhook and the thumbnail
// object storage endpoints.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/skilldeck/lms-backend/db"
	"github.com/skilldeck/lms-backend/log"
	"github.com/skilldeck/lms-backend/objectstorage"
	"github.com/skilldeck/lms-backend/stripe"
)

const (
	jwtExpiration = 360 * time.Hour  // 15 days
	passwordSalt  = "skilldeck365"   // salt for password hashing
)

// Config holds the dependencies and settings of the API HTTP server.
type Config struct {
	Host          string
	Port          int
	Secret        string
	DB            *db.MongoStorage
	Stripe        *stripe.Service
	WebAppURL     string
	ServerURL     string
	ObjectStorage *objectstorage.Client
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	db            *db.MongoStorage
	auth          *jwtauth.JWTAuth
	host          string
	port          int
	router        *chi.Mux
	stripe        *stripe.Service
	secret        string
	webAppURL     string
	serverURL     string
	objectStorage *objectstorage.Client
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	// Set the ServerURL for the object storage client
	if conf.ObjectStorage != nil {
		conf.ObjectStorage.ServerURL = conf.ServerURL
	}

	return &API{
		db:            conf.DB,
		auth:          jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:          conf.Host,
		port:          conf.Port,
		stripe:        conf.Stripe,
		secret:        conf.Secret,
		webAppURL:     conf.WebAppURL,
		serverURL:     conf.ServerURL,
		objectStorage: conf.ObjectStorage,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// protected routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// handle valid JWT tokens
		r.Use(a.authenticator)
		// refresh the token
		log.Infow("new route", "method", "POST", "path", authRefreshTokenEndpoint)
		r.Post(authRefreshTokenEndpoint, a.refreshTokenHandler)
		// get current user information
		log.Infow("new route", "method", "GET", "path", usersMeEndpoint)
		r.Get(usersMeEndpoint, a.userInfoHandler)
		// create a checkout session for a course purchase
		log.Infow("new route", "method", "POST", "path", checkoutSessionEndpoint)
		r.Post(checkoutSessionEndpoint, a.createCheckoutSessionHandler)
		// get course detail with the purchase status of the current user
		log.Infow("new route", "method", "GET", "path", courseDetailWithStatusEndpoint)
		r.Get(courseDetailWithStatusEndpoint, a.courseDetailWithStatusHandler)
		// get all the completed purchases of the current user
		log.Infow("new route", "method", "GET", "path", purchasedCoursesEndpoint)
		r.Get(purchasedCoursesEndpoint, a.purchasedCoursesHandler)
		// upload an image to the object storage
		log.Infow("new route", "method", "POST", "path", objectStorageUploadEndpoint)
		r.Post(objectStorageUploadEndpoint, a.objectStorage.UploadImageWithFormHandler)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		// login
		log.Infow("new route", "method", "POST", "path", authLoginEndpoint)
		r.Post(authLoginEndpoint, a.authLoginHandler)
		// register user
		log.Infow("new route", "method", "POST", "path", usersEndpoint)
		r.Post(usersEndpoint, a.registerHandler)
		// handle the payment provider webhook
		log.Infow("new route", "method", "POST", "path", purchasesWebhookEndpoint)
		r.Post(purchasesWebhookEndpoint, a.stripeWebhookHandler)
		// download an image from the object storage
		log.Infow("new route", "method", "GET", "path", objectStorageDownloadEndpoint)
		r.Get(objectStorageDownloadEndpoint, a.objectStorage.DownloadImageInlineHandler)
	})
	a.router = r
	return r
}
