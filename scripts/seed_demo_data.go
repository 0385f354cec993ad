package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"promokiosk/internal/config"
	"promokiosk/internal/database"
	"promokiosk/internal/model"
	"promokiosk/internal/repository"
	"promokiosk/internal/service"

	"github.com/joho/godotenv"
)

// Seeds a local database with a master admin, a few stores and live
// promotions so the API can be exercised by hand. Run with:
//
//	go run scripts/seed_demo_data.go
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	storeRepo := repository.NewStoreRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	adminRepo := repository.NewAdminRepository(pool, logger)
	promoRepo := repository.NewPromotionRepository(pool, logger)

	storeService := service.NewStoreService(storeRepo, userRepo, logger)
	adminService := service.NewAdminService(adminRepo, storeRepo, logger)
	promotionService := service.NewPromotionService(promoRepo, storeRepo, logger)

	today := time.Now().UTC().Format(model.DateLayoutDayFirst)

	stores := []model.StoreRequest{
		{City: "Riga", Address: "Brivibas iela 1", Name: "Central"},
		{City: "Riga", Address: "Dzirnavu iela 45", Name: "Quiet Centre"},
		{City: "Liepaja", Address: "Liela iela 2", Name: "Port"},
	}

	for _, req := range stores {
		store, err := storeService.Create(ctx, &req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store %s %s: %v\n", req.City, req.Address, err)
			continue
		}
		fmt.Printf("store %s: %s, %s (%s)\n", store.ID, store.City, store.Address, store.Name)

		promos := []model.PromotionRequest{
			{StoreID: store.ID, Description: "Free coffee with any pastry", StartDate: today, Duration: 30, MaxCoupons: 100, ValidDays: 3, StartsToday: true},
			{StoreID: store.ID, Description: "10% off the whole basket", StartDate: today, Duration: 14, ValidDays: 7},
		}
		for _, p := range promos {
			promo, err := promotionService.Create(ctx, &p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "promotion %q: %v\n", p.Description, err)
				continue
			}
			fmt.Printf("  promotion %s: %s\n", promo.ID, promo.Description)
		}

		login := fmt.Sprintf("admin-%s", store.ID.String()[:8])
		storeID := store.ID
		if _, err := adminService.Create(ctx, &model.AdminRequest{
			Login:    login,
			Password: "changeme",
			Role:     model.RoleStore,
			StoreID:  &storeID,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "admin %s: %v\n", login, err)
		} else {
			fmt.Printf("  store admin %s / changeme\n", login)
		}
	}

	if _, err := adminService.Create(ctx, &model.AdminRequest{
		Login:    "master",
		Password: "changeme",
		Role:     model.RoleMaster,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "master admin: %v\n", err)
	} else {
		fmt.Println("master admin master / changeme")
	}
}
