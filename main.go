package main

import (
	"fmt"
	"os"

	auction "auction-listings/internal/auctionService"
	"auction-listings/internal/config"
	model "auction-listings/internal/models"
	"auction-listings/internal/repository"
	"auction-listings/internal/repository/mysqlrepo"
	"auction-listings/internal/server"
	"auction-listings/utils"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	utils.SetLogLevel(cfg.Log.Level)

	repo, err := buildRepo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	auctionSvc := auction.NewAuctionService(repo)

	router := server.SetupRouter(auctionSvc)

	addr := cfg.Addr()
	fmt.Printf("Starting auction server on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildRepo constructs the AuctionDB backend selected in configuration
func buildRepo(cfg *config.Config) (repository.AuctionDB, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		db, err := mysqlrepo.Open(cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns, cfg.MySQL.MaxIdleConns, cfg.MySQL.ConnMaxLifetime)
		if err != nil {
			return nil, err
		}
		repo := mysqlrepo.NewMySQLRepo(db)
		if err := repo.EnsureSchema(); err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		repo := repository.NewMemoryRepo()
		prepopulate(repo)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// prepopulate seeds the in-memory repo with sample categories and users
func prepopulate(repo *repository.MemoryRepo) {
	categories := []model.Category{
		{CategoryID: "cat-home", Name: "Home"},
		{CategoryID: "cat-garden", Name: "Garden"},
		{CategoryID: "cat-electronics", Name: "Electronics"},
	}
	for _, category := range categories {
		repo.CreateCategory(category)
	}

	users := []model.User{
		{UserID: "user1", Username: "alice"},
		{UserID: "user2", Username: "bob"},
		{UserID: "user3", Username: "carol"},
	}
	for _, user := range users {
		repo.CreateUser(user)
	}
}
