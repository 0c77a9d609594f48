// Command main runs the database seeder for reelroom.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"reelroom/internal/config"
	"reelroom/internal/database"
	"reelroom/internal/middleware"
	"reelroom/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of generated users on top of the fixtures")
	numPosts := flag.Int("posts", 80, "Number of generated posts on top of the fixtures")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "YAML fixtures file (defaults to the bundled demo set)")
	randSeed := flag.Int64("seed", 1, "Random seed for generated data")
	tokens := flag.Bool("tokens", false, "Print a 24h dev JWT for every fixture user")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	fx, err := seed.DemoFixtures()
	if *fixtures != "" {
		fx, err = seed.LoadFixtures(*fixtures)
	}
	if err != nil {
		log.Fatalf("❌ Fixtures are invalid: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(context.Background(), fx, seed.Options{
		NumUsers: *numUsers,
		NumPosts: *numPosts,
		RandSeed: *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("✓ %d users, %d posts, %d likes, %d comments, %d follows",
		len(res.Users), res.Posts, res.Likes, res.Comments, res.Follows)

	if *tokens {
		auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, nil)
		for _, u := range res.Users[:len(fx.Users)] {
			tok, err := auth.Issue(u.ID, 24*time.Hour)
			if err != nil {
				log.Fatalf("❌ Failed to issue token for %s: %v", u.Username, err)
			}
			log.Printf("🔑 %-10s %s", u.Username, tok)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
