package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sitesmith/builder-front/internal"
	"github.com/sitesmith/builder-front/internal/config"
	"github.com/sitesmith/builder-front/internal/log"
)

var BuildVersion = "dev"

func main() {
	version := flag.Bool("version", false, "print version and exit")
	help := flag.Bool("help", false, "print help and exit")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.LogInfoWithFields("main", "Starting builder-front", map[string]any{
		"version": BuildVersion,
		"env":     cfg.Env,
	})

	ctx := context.Background()
	app, err := internal.NewBuilderFront(ctx, cfg)
	if err != nil {
		log.LogError("Failed to create application: %v", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		log.LogError("Failed to start server: %v", err)
		os.Exit(1)
	}
}
