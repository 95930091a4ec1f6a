// cmd/seed/main.go
package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/javajoker/inventory-backend/internal/config"
	"github.com/javajoker/inventory-backend/internal/database"
	"github.com/javajoker/inventory-backend/internal/services"
	"github.com/javajoker/inventory-backend/internal/utils"
)

func main() {
	reset := pflag.BoolP("reset", "r", false, "delete all products, stock records and movements before seeding")
	driver := pflag.StringP("driver", "d", "", "storage driver override (postgres|memory)")
	timeout := pflag.DurationP("timeout", "t", time.Minute, "overall seeding timeout")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)

	store, closeStore, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *reset {
		if err := store.Reset(ctx); err != nil {
			logrus.WithError(err).Fatal("Failed to clear existing data")
		}
		logrus.Info("Cleared existing data")
	}

	n, err := database.SeedCatalog(ctx,
		services.NewProductService(store, cfg.Inventory),
		services.NewInventoryService(store, cfg.Inventory),
	)
	if err != nil {
		logrus.WithError(err).WithField("seeded", n).Error("Seeding failed")
		closeStore()
		os.Exit(1)
	}

	logrus.WithField("products", n).Info("Database seeded successfully")
}
