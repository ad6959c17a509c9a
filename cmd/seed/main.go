// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"huddle/internal/config"
	"huddle/internal/database"
	"huddle/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "number of users to create")
	numGroups := flag.Int("groups", 6, "number of groups to create")
	numCheckins := flag.Int("checkins", 100, "number of check-ins to create")
	clean := flag.Bool("clean", false, "delete existing rows first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumGroups:   *numGroups,
		NumCheckins: *numCheckins,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Println("seeding complete")
}
