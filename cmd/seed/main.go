// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	follows := flag.Int("follows", 8, "Accounts each user follows")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of random data")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 = random)")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded users cannot log in")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if *fixture != "" {
		if *shouldClean {
			if err := seed.ClearAll(db); err != nil {
				log.Fatalf("❌ Cleanup failed: %v", err)
			}
		}
		loaded, err := seed.LoadFixtureFile(db, *fixture)
		if err != nil {
			log.Fatalf("❌ Fixture load failed: %v", err)
		}
		log.Printf("✨ Loaded %d users and %d posts from %s", len(loaded.Users), len(loaded.Posts), *fixture)
		return
	}

	opts := seed.DefaultOptions()
	opts.NumUsers = *numUsers
	opts.NumPosts = *numPosts
	opts.FollowsPerUser = *follows
	opts.ShouldClean = *shouldClean
	opts.Factory = seed.SeedOptions{RandSeed: *randSeed, SkipBcrypt: *fast}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	if !*fast {
		log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
	}
}
