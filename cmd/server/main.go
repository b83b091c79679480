package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praekeltfoundation/healthcheckbot/config"
	"github.com/praekeltfoundation/healthcheckbot/internal/cache"
	"github.com/praekeltfoundation/healthcheckbot/internal/eventstore"
	"github.com/praekeltfoundation/healthcheckbot/internal/form"
	"github.com/praekeltfoundation/healthcheckbot/internal/lookup"
	"github.com/praekeltfoundation/healthcheckbot/internal/places"
	"github.com/praekeltfoundation/healthcheckbot/internal/repository"
	"github.com/praekeltfoundation/healthcheckbot/internal/service"
	"github.com/praekeltfoundation/healthcheckbot/internal/transport/rest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	tables, err := lookup.Load(cfg.LookupDir)
	if err != nil {
		log.Fatal("Failed to load lookup tables:", err)
	}

	var placesClient *places.Client
	if cfg.GooglePlacesAPIKey != "" {
		placesClient = places.NewClient(places.DefaultBaseURL, cfg.GooglePlacesAPIKey)
		log.Println("Google Places lookup enabled")
	} else {
		log.Println("GOOGLE_PLACES_API_KEY not set, accepting locations as raw text")
	}

	var store *eventstore.Client
	if cfg.EventStoreURL != "" {
		store = eventstore.NewClient(cfg.EventStoreURL, cfg.EventStoreToken, cfg.HTTPRetries)
		if !store.IsConfigured() {
			log.Fatal("EVENTSTORE_TOKEN is required when EVENTSTORE_URL is set")
		}
		log.Println("Event store submissions enabled")
	} else {
		log.Println("EVENTSTORE_URL not set, screenings will not be submitted")
	}

	base := form.BaseDeployment{Tables: tables, Places: placesClient}

	var deployment form.Deployment
	switch cfg.Variant {
	case "base":
		deployment = &base
	case "hh":
		deployment = &form.HHDeployment{BaseDeployment: base}
	case "dbe":
		if store == nil {
			log.Fatal("the dbe variant requires an event store")
		}

		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")
		db := mongoClient.Database("healthcheck")

		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")

		schoolRepo := repository.NewSchoolRepo(db)
		centreRepo := repository.NewMarkingCentreRepo(db)
		profileCache := cache.NewProfileCache(rdb)

		deployment = &form.DBEDeployment{
			BaseDeployment:  base,
			Schools:         schoolRepo,
			MarkingCentres:  centreRepo,
			LearnerProfiles: service.NewCachedProfileSource(store, profileCache),
		}
	default:
		log.Fatalf("Unknown DEPLOYMENT_VARIANT %q (want base, dbe or hh)", cfg.Variant)
	}

	var triageStore form.TriageStore
	if store != nil {
		triageStore = form.EventStoreSubmitter{Client: store}
	}

	actionSvc := service.NewActionService(
		service.FormAction(&form.TermsForm{}),
		service.FormAction(&form.ProfileForm{Deployment: deployment}),
		service.FormAction(&form.HealthCheckForm{Deployment: deployment, Store: triageStore}),
		&service.SessionStartAction{Deployment: deployment},
		&service.ExitAction{Deployment: deployment},
		&service.StudyMessageAction{Delay: cfg.StudyMessageDelay},
		&service.SetProfileOboAction{},
	)

	router := rest.NewRouter(&rest.Container{
		AuthService:   service.NewAuthService(cfg.WebhookJWTSecret),
		ActionService: actionSvc,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Action server (%s variant) starting on :%s", cfg.Variant, cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
