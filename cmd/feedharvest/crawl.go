package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"feedharvest/pkg/config"
	"feedharvest/pkg/crawler"
	errs "feedharvest/pkg/errors"
	"feedharvest/pkg/logger"
	"feedharvest/pkg/session"
	"feedharvest/pkg/storage"
	"feedharvest/pkg/surface"
	"feedharvest/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	keywords       []string
	language       string
	targetCount    int
	roundCap       int
	headless       bool
	writeCSV       bool
	outputDir      string
	sqlitePath     string
	sessionFile    string
	sessionBackend string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl of the live search feed",
	Long: `Run one crawl of the live search feed.

Results are written to <prefix>_<YYYYMMDD_HHMM>.json in the output directory,
plus a CSV twin unless --csv=false. With --sqlite the records are also
upserted into a SQLite database keyed by permalink.

Exit codes:
  0  success
  1  configuration or output failure
  2  interactive login was not completed in time
  3  the search page rendered no results
  4  the browser failed`,
	Example: `  # Default query, 500 posts
  feedharvest crawl

  # Custom keywords and a smaller target
  feedharvest crawl --keywords paro,nacional --lang es --target 50

  # Keep a running archive in SQLite
  feedharvest crawl --sqlite ./archive.db`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	for _, cmd := range []*cobra.Command{crawlCmd, rootCmd} {
		cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "search keywords, comma separated")
		cmd.Flags().StringVar(&language, "lang", "", "language filter appended as lang:<code>")
		cmd.Flags().IntVar(&targetCount, "target", 0, "stop after this many distinct posts")
		cmd.Flags().IntVar(&roundCap, "round-cap", 0, "maximum number of scroll rounds")
		cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless once a session is cached")
		cmd.Flags().BoolVar(&writeCSV, "csv", true, "also write a CSV file")
		cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory")
		cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "upsert records into this SQLite database")
		cmd.Flags().StringVar(&sessionFile, "session-file", "", "session cache file")
		cmd.Flags().StringVar(&sessionBackend, "session-backend", "", "session backend (file, keyring, encrypted)")
	}
}

// crawlFlags collects only the flags the user set, so config file and
// environment values are not overridden by flag defaults.
func crawlFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("keywords") {
		flags["keywords"] = keywords
	}
	if changed("lang") {
		flags["language"] = language
	}
	if changed("target") {
		flags["target-count"] = targetCount
	}
	if changed("round-cap") {
		flags["round-cap"] = roundCap
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("csv") {
		flags["csv"] = writeCSV
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("sqlite") {
		flags["sqlite"] = sqlitePath
	}
	if changed("session-file") {
		flags["session-file"] = sessionFile
	}
	if changed("session-backend") {
		flags["session-backend"] = sessionBackend
	}
	if cmd.Flags().Changed("log-level") || quiet {
		flags["log-level"] = logLevel
	}
	return flags
}

// loadConfig loads configuration and initializes the global logger
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, "failed to load configuration", err)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, "failed to initialize logger", err)
	}
	return cfg, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(crawlFlags(cmd))
	if err != nil {
		return err
	}

	log := logger.WithField("version", version)
	log.Info("feedharvest starting")

	ui.PrintLogo()
	ui.PrintInfo("Query", cfg.QueryString())
	ui.PrintInfo("Target", fmt.Sprintf("%d posts, at most %d rounds", cfg.Crawl.TargetCount, cfg.Crawl.RoundCap))

	store, err := session.NewStore(cfg.Session, cfg.TargetDomain())
	if err != nil {
		return errs.New(errs.ErrorTypeSession, "failed to open session store", err)
	}

	output, err := storage.NewManager(cfg.Output, log)
	if err != nil {
		return err
	}

	var notifier *ui.Notifier
	if notifications {
		notifier = ui.NewNotifier()
	}
	tracker := ui.NewRoundTracker(cfg.Crawl.TargetCount, cfg.Crawl.RoundCap, notifier)

	c, err := crawler.New(cfg, surface.NewRodLauncher(cfg.Browser, log), store,
		crawler.WithLogger(log),
		crawler.WithObserver(tracker),
		crawler.WithArtifacts(output),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := c.Run(ctx)
	if err != nil {
		if notifier != nil {
			notifier.SendError("Crawl failed", err.Error())
		}
		return err
	}
	tracker.Finish(strings.ReplaceAll(string(result.StopReason), "_", " "))

	written, err := output.Write(ctx, result.Document())
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Saved %d posts", len(result.Records)))
	ui.PrintInfo("JSON", written.JSONPath)
	if written.CSVPath != "" {
		ui.PrintInfo("CSV", written.CSVPath)
	}
	if cfg.Output.SQLite != "" {
		ui.PrintInfo("SQLite", fmt.Sprintf("%s (+%d rows)", cfg.Output.SQLite, written.SQLiteRows))
	}
	if notifier != nil {
		notifier.SendSuccess("Crawl complete", fmt.Sprintf("%d posts saved", len(result.Records)))
	}

	log.WithFields(map[string]interface{}{
		"records": len(result.Records),
		"rounds":  result.Rounds,
		"reason":  string(result.StopReason),
		"json":    written.JSONPath,
	}).Info("crawl completed")
	return nil
}
