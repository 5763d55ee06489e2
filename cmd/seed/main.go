package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/clubops/standings/internal/seeder"
)

// Default configuration constants.
const (
	defaultNumMembers  = 200
	defaultNumContests = 10
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numMembers  = flag.Int("members", defaultNumMembers, "Number of club members to generate")
		numContests = flag.Int("contests", defaultNumContests, "Number of contests in the season")
		topN        = flag.Int("top", defaultTopN, "Number of standings entries to fetch back")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile     = flag.String("log", "", "Log file for seeder output (default: seed_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	// Setup logging
	if err := seeder.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	// Create seeder configuration
	config := &seeder.Config{
		BaseURL:     *baseURL,
		NumMembers:  *numMembers,
		NumContests: *numContests,
		TopN:        *topN,
		Workers:     *workers,
		Timeout:     *timeout,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the seeder
	if err := seeder.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
