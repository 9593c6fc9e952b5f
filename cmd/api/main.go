package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"facebook-scraper/internal/api"
	"facebook-scraper/internal/config"
	"facebook-scraper/internal/scraper"
	"facebook-scraper/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "api",
		Usage: "serve the Facebook keyword scraper over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional YAML configuration file",
				EnvVars: []string{"SCRAPER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "listen port, overrides PORT and the config file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln("error", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}
	if c.IsSet("port") {
		cfg.Service.Port = c.String("port")
		if err := cfg.Validate(); err != nil {
			return cli.Exit(fmt.Sprintf("Invalid config: %v", err), 1)
		}
	}

	logger := utils.NewLogger(cfg.Logging, os.Stdout)
	collector := scraper.NewCollector(cfg, logger)
	server := api.NewServer(collector, logger, cfg.Service)

	logger.Infof("%s searching %d keywords", cfg.Service.Name, len(cfg.Scraper.Keywords))
	logger.Info("Available endpoints:")
	logger.Info("  GET  /                - Health check")
	logger.Info("  GET  /scrape-facebook - Run a scrape and return the posts")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Errorf("Server stopped: %v", err)
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
