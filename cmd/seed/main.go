// Command seed fills the configured database with demo data.
package main

import (
	"flag"
	"log"

	"gymrace/internal/bootstrap"
	"gymrace/internal/config"
	"gymrace/internal/seed"
)

func main() {
	opts := seed.DefaultOptions
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.RoutinesPerUser, "routines", opts.RoutinesPerUser, "Routines per user")
	flag.IntVar(&opts.FriendsPerUser, "friends", opts.FriendsPerUser, "Friend connections per user")
	flag.IntVar(&opts.NumChallenges, "challenges", opts.NumChallenges, "Number of challenges to create")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close() }()

	res, err := seed.NewSeeder(rt.DB, rt.Exercises.Titles(), *randomSeed).Run(opts)
	if err != nil {
		_ = rt.Close()
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d routines, %d friend edges, %d friend requests, %d challenges",
		res.Users, res.Routines, res.FriendEdges, res.Requests, res.Challenges)
}
