package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/openshelf/backend/internal/events"
	"github.com/openshelf/openshelf/backend/internal/router"
	"github.com/openshelf/openshelf/backend/pkg/config"
	"github.com/openshelf/openshelf/backend/pkg/firebase"
	"github.com/openshelf/openshelf/backend/validators"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize databases")
	}
	defer db.CloseDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var firebaseAuthClient *auth.Client
	if cfg.AuthMode == "firebase" || cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to initialize Firebase")
		}
		firebaseAuthClient = firebaseApp.AuthClient
	}

	bus := events.NewBus()
	defer bus.Close()

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e)

	if err := router.SetupRoutes(ctx, e, cfg, db.Postgres, db.Mongo, bus, firebaseAuthClient); err != nil {
		logrus.WithError(err).Fatal("failed to set up routes")
	}

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
