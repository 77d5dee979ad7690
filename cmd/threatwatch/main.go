package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"threatwatch/internal/config"
	"threatwatch/internal/domain"
	"threatwatch/internal/export"
	"threatwatch/internal/extract"
	"threatwatch/internal/feed"
	"threatwatch/internal/publisher"
	"threatwatch/internal/ratelimit"
	"threatwatch/internal/service"
	"threatwatch/internal/storage/sqlite"
)

const usage = `Usage: threatwatch [global flags] <command> [command flags]

Commands:
  update    Update feeds and store new articles
  search    Search for stored articles
  trends    Show trending keywords

Global flags:
  -config string    path to YAML config file
  -db string        database file path (overrides config)
  -delay duration   delay between requests (overrides config)
  -workers int      maximum concurrent workers (overrides config)
  -v                enable verbose output

Examples:
  threatwatch update -days 3
  threatwatch search ransomware -days 10 -output results.json
  threatwatch trends -days 7 -limit 20
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	globals := flag.NewFlagSet("threatwatch", flag.ExitOnError)
	globals.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := globals.String("config", "", "path to config file")
	dbPath := globals.String("db", "", "database file path")
	delay := globals.Duration("delay", 0, "delay between requests")
	workers := globals.Int("workers", 0, "maximum concurrent workers")
	verbose := globals.Bool("v", false, "enable verbose output")
	_ = globals.Parse(args)

	rest := globals.Args()
	if len(rest) == 0 {
		globals.Usage()
		return 0
	}

	logger := setupLogger(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *delay != 0 {
		cfg.Fetch.Delay = *delay
	}
	if *workers != 0 {
		cfg.Fetch.MaxWorkers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer db.Close()

	store := sqlite.NewStore(db)
	if err := store.Init(ctx, cfg.Feeds); err != nil {
		logger.Error("failed to initialize database", "error", err)
		return 1
	}
	logger.Debug("database initialized", "path", cfg.Database.Path)

	limiter := ratelimit.NewLimiter(cfg.Fetch.Delay)
	fetcher := feed.NewFetcher(feed.Config{Timeout: cfg.Fetch.FeedTimeout}, limiter, logger)
	extractor := extract.NewExtractor(limiter, logger)

	var pub service.Publisher
	if cfg.RabbitMQ != nil {
		rabbit, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			return 1
		}
		defer rabbit.Close()
		pub = rabbit
	}

	monitor := service.NewMonitor(fetcher, extractor, store, pub, logger, cfg.Fetch.MaxWorkers)

	switch rest[0] {
	case "update":
		return runUpdate(ctx, monitor, rest[1:])
	case "search":
		return runSearch(ctx, monitor, rest[1:])
	case "trends":
		return runTrends(ctx, monitor, rest[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		globals.Usage()
		return 1
	}
}

func runUpdate(ctx context.Context, monitor *service.Monitor, args []string) int {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	days := fs.Int("days", 1, "process articles from last N days")
	_ = fs.Parse(args)

	fmt.Printf("Updating feeds (looking back %d days)...\n", *days)

	stats, err := monitor.UpdateFeeds(ctx, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	fmt.Println("\nUpdate complete:")
	fmt.Printf("Feeds processed: %d\n", stats.FeedsProcessed)
	fmt.Printf("New articles: %d\n", stats.NewArticles)
	fmt.Printf("Errors: %d\n", stats.Errors)
	return 0
}

func runSearch(ctx context.Context, monitor *service.Monitor, args []string) int {
	query := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		query = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	days := fs.Int("days", 7, "search in last N days")
	limit := fs.Int("limit", 20, "maximum number of results")
	output := fs.String("output", "", "output JSON file")
	csvOut := fs.String("csv", "", "output CSV file")
	_ = fs.Parse(args)

	if query != "" {
		fmt.Printf("Searching for %q in the last %d days...\n", query, *days)
	} else {
		fmt.Printf("Getting the latest articles from the last %d days...\n", *days)
	}

	articles, err := monitor.SearchArticles(ctx, query, *days, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	printArticles(articles)

	if *output != "" {
		if err := export.JSONFile(*output, articles); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		fmt.Printf("Exported %d articles to %s\n", len(articles), *output)
	}
	if *csvOut != "" {
		if err := export.CSVFile(*csvOut, articles); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
		fmt.Printf("Exported %d articles to %s\n", len(articles), *csvOut)
	}
	return 0
}

func runTrends(ctx context.Context, monitor *service.Monitor, args []string) int {
	fs := flag.NewFlagSet("trends", flag.ExitOnError)
	days := fs.Int("days", 3, "look at articles from last N days")
	limit := fs.Int("limit", 15, "maximum number of keywords")
	_ = fs.Parse(args)

	fmt.Printf("Getting trending keywords from the last %d days...\n", *days)

	trends, err := monitor.TrendingKeywords(ctx, *days, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	if len(trends) == 0 {
		fmt.Println("No trending keywords found. Try updating feeds first.")
		return 0
	}

	fmt.Println("\n===== TRENDING SECURITY TOPICS =====")
	maxCount := trends[0].Count
	for _, kw := range trends {
		barLength := 0
		if maxCount > 0 {
			barLength = kw.Count * 20 / maxCount
		}
		fmt.Printf("%-20s %3d %s\n", kw.Keyword, kw.Count, strings.Repeat("█", barLength))
	}
	return 0
}

func printArticles(articles []domain.ArticleView) {
	if len(articles) == 0 {
		fmt.Println("No articles found matching your criteria.")
		return
	}

	fmt.Println("\n===== THREAT INTELLIGENCE REPORT =====")
	fmt.Printf("Found %d articles\n", len(articles))
	fmt.Println(strings.Repeat("=", 40))

	for _, article := range articles {
		fmt.Printf("\n%s\n", article.Title)
		fmt.Printf("Source: %s | Date: %s\n", article.SourceName, article.PublishedDate.Format(time.DateOnly))
		fmt.Printf("URL: %s\n", article.URL)
		if article.Summary != "" {
			fmt.Printf("\nSummary:\n%s\n", article.Summary)
		}
		if article.Keywords != "" {
			fmt.Printf("\nKeywords: %s\n", strings.Join(domain.SplitKeywords(article.Keywords), ", "))
		}
		fmt.Println(strings.Repeat("-", 40))
	}
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
