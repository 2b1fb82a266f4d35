package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/andy/jobclock/internal/app"
	"github.com/andy/jobclock/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Variables already set in the environment win over .env
	_ = godotenv.Load()

	// If the user asked for help, avoid initializing the full app (which may prompt)
	skipInit := false
	for _, a := range os.Args[1:] {
		if a == "-h" || a == "--help" || a == "help" || a == "completion" {
			skipInit = true
			break
		}
	}

	if !skipInit {
		a, err := app.New(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer a.Close()
		cli.SetApp(a)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
