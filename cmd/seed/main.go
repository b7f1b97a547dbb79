package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"podium/internal/config"
	"podium/internal/model"
	"podium/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDatabase)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	committeeRepo := repository.NewCommitteeRepo(db)
	countryRepo := repository.NewCountryRepo(db)
	modeRepo := repository.NewModeDataRepo(db)
	codeRepo := repository.NewDelegateCodeRepo(db)

	committee := &model.Committee{
		ID:          uuid.New().String(),
		Name:        "Security Council",
		Agenda:      "The situation in the South Atlantic",
		CurrentMode: model.ModeGsl,
		CreatedAt:   time.Now(),
	}
	if err := committeeRepo.Create(ctx, committee); err != nil {
		log.Fatalf("Failed to insert committee: %v", err)
	}

	if err := modeRepo.Create(ctx, model.NewModeData(uuid.New().String(), committee.ID, model.ModeGsl)); err != nil {
		log.Fatalf("Failed to insert mode data: %v", err)
	}

	countries := []struct {
		name  string
		short string
	}{
		{"Argentina", "AR"},
		{"Brazil", "BR"},
		{"China", "CN"},
		{"France", "FR"},
		{"Russian Federation", "RU"},
		{"United Kingdom", "GB"},
		{"United States", "US"},
	}
	for _, c := range countries {
		country := &model.Country{
			ID:          uuid.New().String(),
			CommitteeID: committee.ID,
			Name:        c.name,
			ShortName:   c.short,
			FlagURL:     fmt.Sprintf("https://flagcdn.com/%s.svg", strings.ToLower(c.short)),
			Roll:        model.RollPresentAndVoting,
		}
		if err := countryRepo.Create(ctx, country); err != nil {
			log.Fatalf("Failed to insert country %s: %v", c.name, err)
		}

		code := &model.DelegateCode{
			Code:        uuid.New().String()[:8],
			CommitteeID: committee.ID,
			CountryID:   country.ID,
			Name:        c.name,
		}
		if err := codeRepo.Create(ctx, code); err != nil {
			log.Fatalf("Failed to insert delegate code for %s: %v", c.name, err)
		}
		fmt.Printf("%-20s %s\n", c.name, code.Code)
	}

	fmt.Printf("Successfully seeded committee '%s' (%s)\n", committee.Name, committee.ID)
}
