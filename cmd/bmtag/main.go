package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/nikbrunner/bmtag/internal/ai"
	"github.com/nikbrunner/bmtag/internal/api"
	"github.com/nikbrunner/bmtag/internal/collect"
	"github.com/nikbrunner/bmtag/internal/exporter"
	"github.com/nikbrunner/bmtag/internal/locator"
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/organize"
	"github.com/nikbrunner/bmtag/internal/picker"
	"github.com/nikbrunner/bmtag/internal/scraper"
	"github.com/nikbrunner/bmtag/internal/search"
	"github.com/nikbrunner/bmtag/internal/storage"
)

// cacheTTL is how long a cached enrichment is reused.
const cacheTTL = 30 * 24 * time.Hour

func main() {
	cmd := "serve"
	var args []string
	if len(os.Args) >= 2 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return
	case "serve", "analyze", "organize", "search", "export":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printHelp()
		os.Exit(1)
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = a.runServe(ctx)
	case "analyze":
		err = a.runAnalyze(ctx)
	case "organize":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: bmtag organize <file.json>\n")
			os.Exit(1)
		}
		err = a.runOrganize(ctx, args[0])
	case "search":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: bmtag search <query>\n")
			os.Exit(1)
		}
		err = a.runSearch(ctx, strings.Join(args, " "))
	case "export":
		var outputPath string
		if len(args) >= 1 {
			outputPath = args[0]
		}
		err = a.runExport(outputPath)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `bmtag - collect, AI-tag and organize browser bookmarks

Usage:
  bmtag                   Start the HTTP API (same as serve)
  bmtag serve             Start the HTTP API
  bmtag analyze           Collect and tag bookmarks, print JSON
  bmtag organize <file>   Organize browser bookmarks from an analyze JSON file
  bmtag search <query>    Fuzzy search bookmarks → select → open
  bmtag export [path]     Export the Chrome/Edge bookmark bar to HTML
  bmtag help              Show this help

HTTP API:
  POST /api/analyze-bookmarks
  POST /api/organize-bookmarks   {"bookmarks": [...]}
  GET  /api/search?q=<query>
  GET  /health

Environment:
  BMTAG_AI_API_KEY    API key for the tagging model (or DEEPSEEK_API_KEY)
  BMTAG_AI_BASE_URL   OpenAI-compatible API base URL
  BMTAG_AI_MODEL      Model name
  BMTAG_ADDR          Listen address

Configuration:
  ~/.config/bmtag/config.json
`
	fmt.Print(help)
}

// app holds the wired components shared by every subcommand.
type app struct {
	cfg          *storage.Config
	logger       *slog.Logger
	env          locator.Env
	cache        *storage.Cache
	orchestrator *collect.Orchestrator
	runner       *organize.Runner
}

func newApp() (*app, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	cfg, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home dir: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		env: locator.Env{
			Home:        home,
			GOOS:        runtime.GOOS,
			Profiles:    cfg.Profiles,
			ImportFiles: cfg.ImportFiles,
		},
	}
	sources := func() []locator.Source { return locator.Discover(a.env) }

	params := collect.Params{
		Sources: sources,
		Fetcher: scraper.NewFetcher(scraper.Params{
			Timeout:          cfg.FetchTimeout(),
			MaxContentLength: cfg.MaxContentLength,
			InsecureTLS:      cfg.InsecureTLS,
		}),
		Limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.TagRatePerMinute)), 1),
		EnrichLimit: cfg.EnrichLimit,
		Logger:      logger,
	}

	tagger, err := ai.NewClient(ai.Params{APIKey: cfg.AIAPIKey, BaseURL: cfg.AIBaseURL, Model: cfg.AIModel})
	switch {
	case errors.Is(err, ai.ErrNoAPIKey):
		logger.Warn("no AI API key configured, enriched bookmarks will be tagged as error")
	case err != nil:
		return nil, fmt.Errorf("ai client: %w", err)
	default:
		params.Tagger = tagger
	}

	if cache, err := openCache(cfg.CachePath); err != nil {
		logger.Warn("enrichment cache disabled", "error", err)
	} else {
		a.cache = cache
		params.Cache = cache
	}

	a.orchestrator = collect.New(params)
	a.runner = organize.NewRunner(organize.RunnerParams{
		Sources:    sources,
		FolderName: cfg.OrganizedFolderName,
		Logger:     logger,
	})
	return a, nil
}

func openCache(path string) (*storage.Cache, error) {
	if path == "" {
		var err error
		if path, err = storage.DefaultCachePath(); err != nil {
			return nil, err
		}
	}
	return storage.NewCache(path, cacheTTL)
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// runServe serves the HTTP API until interrupted.
func (a *app) runServe(ctx context.Context) error {
	server := api.NewServer(api.Params{
		Analyzer:  a.orchestrator,
		Organizer: a.runner,
		StaticDir: a.cfg.StaticDir,
		Logger:    a.logger,
	})
	return server.ListenAndServe(ctx, a.cfg.ListenAddr)
}

// runAnalyze prints the analysis as JSON on stdout.
func (a *app) runAnalyze(ctx context.Context) error {
	analysis, err := a.orchestrator.Analyze(ctx)
	if err != nil {
		return err
	}
	data, err := storage.MarshalIndent(analysis)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// runOrganize applies an analyze result (or any {"bookmarks": [...]} file).
func (a *app) runOrganize(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var req api.OrganizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	report := a.runner.Organize(ctx, req.Bookmarks)
	if len(report) == 0 {
		fmt.Fprintln(os.Stderr, "No writable Chrome or Edge bookmark store found")
		return nil
	}

	for key, res := range report {
		status := "ok"
		if !res.Success {
			status = "failed"
		}
		fmt.Printf("%-20s %-7s %s\n", key, status, res.Message)
	}
	if report.Succeeded() == 0 {
		return errors.New("no bookmark store was organized")
	}
	return nil
}

// runSearch performs a fuzzy search and opens the selected bookmark.
func (a *app) runSearch(ctx context.Context, query string) error {
	records, _, err := a.orchestrator.Collect(ctx)
	if err != nil {
		return err
	}

	results := search.FuzzySearchBookmarks(records, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected *model.BookmarkRecord
	if len(results) == 1 {
		// Single result - select it directly
		selected = &results[0].Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		// Multiple results - show picker
		program := tea.NewProgram(picker.New(results, query))
		finalModel, err := program.Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}
		selected = finalModel.(picker.Picker).SelectedBookmark()
	}

	if selected != nil {
		openURL(selected.URL)
	}
	return nil
}

// runExport writes the first discovered Chrome/Edge store as Netscape HTML.
func (a *app) runExport(outputPath string) error {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			return fmt.Errorf("default export path: %w", err)
		}
	}

	var src *locator.Source
	for _, s := range locator.Discover(a.env) {
		if s.Format == locator.FormatChromium {
			src = &s
			break
		}
	}
	if src == nil {
		return errors.New("no Chrome or Edge bookmark store found")
	}

	file, err := storage.NewChromiumStore(src.Path).Load()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(file)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	fmt.Printf("Exported %s bookmarks to %s\n", src.Key(), outputPath)
	return nil
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
