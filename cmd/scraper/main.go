package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"facebook-scraper/internal/config"
	"facebook-scraper/internal/scraper"
	"facebook-scraper/internal/utils"
)

func main() {
	app := &cli.App{
		Name:  "scraper",
		Usage: "run one keyword scrape and print the posts as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional YAML configuration file",
				EnvVars: []string{"SCRAPER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the JSON array to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent the JSON output",
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

	// stdout may carry the JSON result
	logger := utils.NewLogger(cfg.Logging, os.Stderr)

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to create output file: %v", err), 1)
		}
		defer file.Close()
		out = file
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	posts := scraper.NewCollector(cfg, logger).Collect(ctx)

	enc := json.NewEncoder(out)
	if c.Bool("pretty") {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(posts); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to write posts: %v", err), 1)
	}

	logger.Infof("Wrote %d posts", len(posts))
	return nil
}
