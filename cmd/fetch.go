package main

import (
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/fetcher"
	"github.com/sells-group/disruption-cli/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull the upstream feeds and score what they report",
	Long: `Fetch observations from the configured providers (weather alerts,
earthquake catalog, news articles, transport incidents), score them, and
persist the resulting alerts and per-source quality assessments.

Feeds are enabled by configuring their URL (DISRUPT_FEEDS_WEATHER_URL and
friends); a feed with no URL is skipped.

Examples:
  # Fetch everything configured and persist alerts
  fetch

  # Dry run: fetch and print, do not touch the store
  fetch --dry-run --output alerts.json

  # Only the earthquake catalog
  fetch --feeds earthquake`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("feeds", "", "comma-separated subset of feeds to pull (weather,earthquake,news,transport)")
	f.String("output", "", "also write scored alerts to this file")
	f.Bool("dry-run", false, "fetch and score without persisting")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initEnv(ctx, "fetch")
	if err != nil {
		return err
	}
	defer env.Close()

	only, _ := cmd.Flags().GetString("feeds")
	output, _ := cmd.Flags().GetString("output")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	feeds, err := buildFeeds(only)
	if err != nil {
		return err
	}
	if len(feeds) == 0 {
		return eris.New("fetch: no feeds enabled")
	}

	log := zap.L().With(zap.String("command", "fetch"))
	log.Info("fetching feeds", zap.Int("feeds", len(feeds)))

	observations := fetcher.FetchAll(ctx, feeds)
	if len(observations) == 0 {
		fmt.Println("No observations fetched.")
		return nil
	}

	result, err := env.Pipeline.ProcessBatch(ctx, observations, cfg.Batch.Concurrency)
	if err != nil {
		return eris.Wrap(err, "fetch: process batch")
	}
	pipeline.SortByPriority(result.Alerts)

	if !dryRun {
		if err := persistBatch(ctx, env, result.Alerts, result.Assessments); err != nil {
			return err
		}
	}

	if output != "" {
		if err := writeJSON(output, result.Alerts); err != nil {
			return err
		}
	}

	log.Info("fetch complete",
		zap.Int("observations", len(observations)),
		zap.Int("alerts", len(result.Alerts)),
		zap.Int("rejected", len(result.Rejected)),
	)
	printBatchSummary(result.Alerts, len(result.Rejected))
	return nil
}

// buildFeeds assembles the enabled feeds behind one shared rate-limited
// client. An empty selector enables every feed with a configured URL.
func buildFeeds(only string) ([]fetcher.Feed, error) {
	selected := map[string]bool{}
	if only != "" {
		for _, name := range splitAndTrim(only) {
			selected[name] = true
		}
	}
	want := func(name string) bool { return only == "" || selected[name] }

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	var feeds []fetcher.Feed
	if cfg.Feeds.WeatherURL != "" && want("weather") {
		feeds = append(feeds, &fetcher.WeatherFeed{Fetcher: f, URL: cfg.Feeds.WeatherURL})
	}
	if cfg.Feeds.QuakeURL != "" && want("earthquake") {
		feeds = append(feeds, &fetcher.QuakeFeed{Fetcher: f, URL: cfg.Feeds.QuakeURL})
	}
	if cfg.Feeds.NewsURL != "" && want("news") {
		newsURL, err := withAPIKey(cfg.Feeds.NewsURL, cfg.Feeds.NewsAPIKey)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, &fetcher.NewsFeed{Fetcher: f, URL: newsURL})
	}
	if cfg.Feeds.TransportURL != "" && want("transport") {
		feeds = append(feeds, &fetcher.TransportFeed{Fetcher: f, URL: cfg.Feeds.TransportURL})
	}
	return feeds, nil
}

func withAPIKey(rawURL, key string) (string, error) {
	if key == "" {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse news URL %s", rawURL)
	}
	q := u.Query()
	q.Set("apiKey", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
