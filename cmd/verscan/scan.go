package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/verscan/internal/client"
	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/database"
	"github.com/nao1215/verscan/internal/log"
	"github.com/nao1215/verscan/internal/model"
	"github.com/nao1215/verscan/internal/pipeline"
	"github.com/nao1215/verscan/internal/progress"
	"github.com/nao1215/verscan/internal/release"
	"github.com/nao1215/verscan/internal/report"
	"github.com/nao1215/verscan/internal/search"
	"github.com/nao1215/verscan/internal/tor"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [base-url...]",
		Short: "Fingerprint the deployed version of one or more targets",
		Long: `Fingerprint the deployed version of one or more web deployments.

The scan runs in two phases. First the release tags of the upstream
repository are fetched from the release index. Then the target is probed
for the version-stamped asset each tag would ship, newest tag first. The
first candidate whose asset exists on the target is reported as the
deployed version; --all keeps probing to catch deployments that expose
assets for several versions.

Status output goes to standard error. The report alone goes to standard
output, so piping and redirection stay clean.

Examples:
  # Fingerprint a single deployment
  verscan scan https://sso.example.com

  # Probe every candidate instead of stopping at the first hit
  verscan scan --all https://sso.example.com

  # Fingerprint a fork that publishes its own releases
  verscan scan --repo example/authentik-fork https://sso.example.com

  # Scan multiple targets concurrently with JSON output
  verscan scan -j https://a.example.com https://b.example.com

  # Route all traffic through an embedded Tor daemon
  verscan scan --tor https://sso.example.onion

Per-target settings (repository, asset path, extra headers) can be kept
in a .verscan file:
  defaults:
    probeDelayMs: 100
  targets:
    sso.example.com:
      repository: example/authentik-fork
      headers:
        Cookie: "gate=knock"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("repo", "r", config.DefaultRepository, "repository whose releases provide the candidate versions (owner/name)")
	cmd.Flags().IntP("per-page", "p", config.DefaultPerPage, "release index page size")
	cmd.Flags().BoolP("all", "a", false, "probe every candidate instead of stopping at the first hit")
	cmd.Flags().DurationP("delay", "d", config.DefaultProbeDelay, "pause between probe requests (e.g. 250ms)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "HTTP timeout per request")
	cmd.Flags().String("path-template", "", "asset path probed per candidate, %s is the version")
	cmd.Flags().Bool("include-404", false, "list absent candidates in the per-result output")
	cmd.Flags().Bool("no-ui", false, "disable the live progress line")
	cmd.Flags().Bool("no-inspect", false, "skip the landing page inspection")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "concurrency for multi-target scans")
	cmd.Flags().StringP("config", "c", "", "path to configuration file")
	cmd.Flags().Bool("tor", false, "route all requests through an embedded Tor daemon")
	cmd.Flags().StringP("external-tor", "e", "", "SOCKS5 address of a running Tor proxy (e.g. 127.0.0.1:9050)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout, "embedded Tor bootstrap timeout")
	cmd.Flags().BoolP("json", "j", false, "write the report as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "write the report as Markdown")
	cmd.Flags().StringP("output", "o", "", "write the report to a file instead of standard output")

	return cmd
}

// runScanCmd is the entry point for the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if len(cfg.Targets) == 0 {
		target, err := promptForTarget(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		cfg.Targets = []string{target}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger)
}

// promptForTarget asks for a base URL on the terminal. Non-interactive
// runs fail instead of hanging on a read that will never complete.
func promptForTarget(in *os.File, out io.Writer) (string, error) {
	if !progress.IsTerminal(in) {
		return "", config.ErrNoTarget
	}

	fmt.Fprint(out, "Base URL to fingerprint: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read base URL: %w", err)
		}
		return "", config.ErrNoTarget
	}

	target := strings.TrimSpace(scanner.Text())
	if target == "" {
		return "", config.ErrNoTarget
	}
	return target, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its root.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		// Fall back to the root command's persistent flags
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig builds the scan configuration from command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Repository, err = cmd.Flags().GetString("repo")
	if err != nil {
		return nil, err
	}

	cfg.PerPage, err = cmd.Flags().GetInt("per-page")
	if err != nil {
		return nil, err
	}

	cfg.Exhaustive, err = cmd.Flags().GetBool("all")
	if err != nil {
		return nil, err
	}

	cfg.ProbeDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	pathTemplate, err := cmd.Flags().GetString("path-template")
	if err != nil {
		return nil, err
	}
	if pathTemplate != "" {
		cfg.PathTemplate = pathTemplate
	}

	cfg.IncludeNotFound, err = cmd.Flags().GetBool("include-404")
	if err != nil {
		return nil, err
	}

	cfg.NoUI, err = cmd.Flags().GetBool("no-ui")
	if err != nil {
		return nil, err
	}

	cfg.NoInspect, err = cmd.Flags().GetBool("no-inspect")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load target profiles from the configuration file. An explicitly
	// given path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		profiles, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration file: %w", err)
		}
		cfg.TargetProfiles = profiles
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.TargetProfiles = &config.File{Targets: make(map[string]config.TargetProfile)}
	}

	cfg.UseTor, err = cmd.Flags().GetBool("tor")
	if err != nil {
		return nil, err
	}

	externalTor, err := cmd.Flags().GetString("external-tor")
	if err != nil {
		return nil, err
	}
	if externalTor != "" {
		cfg.UseTor = true
		cfg.TorProxyAddress = externalTor
	}

	cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Scan history always goes to the local database so history and
	// compare work without extra flags.
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Targets = args

	return cfg, nil
}

// setupLogger configures the logger based on verbosity. Tokens and
// other credentials are masked before they reach the log output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// runScan executes the scan with the given configuration.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return config.ErrNoTarget
	}

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"repository", cfg.Repository,
		"exhaustive", cfg.Exhaustive,
		"batchSize", cfg.BatchSize,
		"useTor", cfg.UseTor,
	)

	if cfg.Token == "" {
		fmt.Fprintf(os.Stderr, "Tip: set %s to raise the release index rate limit for unauthenticated requests.\n\n", config.TokenEnv)
	}

	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
		logger.Info("scan history enabled", "dbDir", cfg.DBDir)
	}

	// Normalize targets up front so every later stage sees the same
	// canonical base URL.
	for i, target := range cfg.Targets {
		normalized, err := model.NewTarget(target)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", target, err)
		}
		cfg.Targets[i] = normalized.String()
	}

	clients, cleanup, err := setupClients(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, clients, db, logger)
	}
	return runSequentialScan(ctx, cfg, clients, db, logger)
}

// scanClients bundles the HTTP clients used by a scan. The release
// index, page inspection, and asset probing have different redirect
// and response-size profiles, so each gets its own client.
type scanClients struct {
	index *http.Client
	page  *http.Client
	probe *http.Client
}

// setupClients builds the HTTP clients, routed through Tor when
// requested. The returned cleanup stops an embedded Tor daemon.
func setupClients(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scanClients, func(), error) {
	noop := func() {}

	if !cfg.UseTor {
		return &scanClients{
			index: client.NewIndexClient(cfg.Timeout),
			page:  client.NewPageClient(cfg.Timeout),
			probe: client.NewProbeClient(cfg.Timeout),
		}, noop, nil
	}

	var torClient *tor.Client
	cleanup := noop
	if cfg.TorProxyAddress != "" {
		var err error
		torClient, err = tor.NewClient(cfg.TorProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := torClient.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)", status, cfg.TorProxyAddress)
		}
	} else {
		var embedded *tor.EmbeddedTor
		var err error
		torClient, embedded, err = startEmbeddedTor(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
	}

	return &scanClients{
		index: torClient.NewIndexHTTPClient(),
		page:  torClient.NewPageHTTPClient(),
		probe: torClient.NewProbeHTTPClient(),
	}, cleanup, nil
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
// Returns the Tor client and embedded Tor manager on success.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, *tor.EmbeddedTor, error) {
	fmt.Fprintln(os.Stderr, "Starting embedded Tor daemon...")
	fmt.Fprintf(os.Stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)

	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)

	fmt.Fprintf(os.Stderr, "Embedded Tor daemon started successfully!\n")
	fmt.Fprintf(os.Stderr, "SOCKS proxy: %s\n\n", embeddedTor.SocksAddr())

	torClient, err := embeddedTor.NewClient(cfg.Timeout)
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	status := torClient.CheckConnection(ctx)
	if status != tor.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	return torClient, embeddedTor, nil
}

// profileFor returns the profile for a target, or the defaults when the
// host has no entry of its own.
func profileFor(cfg *config.Config, target string) config.TargetProfile {
	if cfg.TargetProfiles == nil {
		return config.TargetProfile{}
	}
	t, err := model.NewTarget(target)
	if err != nil {
		return cfg.TargetProfiles.Defaults
	}
	return cfg.TargetProfiles.GetTargetProfile(t.Host())
}

// repositoryFor resolves the release repository for a profile.
func repositoryFor(cfg *config.Config, profile config.TargetProfile) string {
	if profile.Repository != "" {
		return profile.Repository
	}
	return cfg.Repository
}

// tokenFor resolves the release index token for a profile.
func tokenFor(cfg *config.Config, profile config.TargetProfile) string {
	if profile.TokenEnv != "" {
		return os.Getenv(profile.TokenEnv)
	}
	return cfg.Token
}

// newEnumerateStep builds the shared enumeration step for a repository.
func newEnumerateStep(cfg *config.Config, indexClient *http.Client, repository, token string, ui *scanUI, logger *slog.Logger) *pipeline.EnumerateStep {
	enumOpts := []release.EnumeratorOption{
		release.WithUserAgent(cfg.UserAgent),
		release.WithPerPage(cfg.PerPage),
		release.WithLogger(logger),
	}
	if token != "" {
		enumOpts = append(enumOpts, release.WithToken(token))
	}
	if ui != nil {
		enumOpts = append(enumOpts, release.WithPageCallback(ui.pageFetched))
	}
	enumerator := release.NewEnumerator(indexClient, cfg.IndexBase, repository, enumOpts...)

	stepOpts := []pipeline.EnumerateStepOption{
		pipeline.WithEnumerateLogger(logger),
	}
	if ui != nil {
		stepOpts = append(stepOpts, pipeline.WithEnumerateCallback(ui.candidatesReady))
	}
	return pipeline.NewEnumerateStep(enumerator, stepOpts...)
}

// createPipelineForTarget creates a scan pipeline honoring the target's
// profile. Profile values override the flag-level configuration.
func createPipelineForTarget(cfg *config.Config, clients *scanClients, enumerate *pipeline.EnumerateStep, profile config.TargetProfile, ui *scanUI, db *database.ScanDB, logger *slog.Logger) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	probeDelay := cfg.ProbeDelay
	if d := profile.ProbeDelay(); d > 0 {
		probeDelay = d
	}
	pathTemplate := cfg.PathTemplate
	if profile.PathTemplate != "" {
		pathTemplate = profile.PathTemplate
	}

	pageClient := clients.page
	probeClient := clients.probe
	if len(profile.Headers) > 0 {
		pageClient = client.WithHeaders(pageClient, profile.Headers)
		probeClient = client.WithHeaders(probeClient, profile.Headers)
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineInspect(!cfg.NoInspect),
		pipeline.WithPipelineExhaustive(cfg.Exhaustive),
		pipeline.WithPipelineProbeDelay(probeDelay),
		pipeline.WithPipelinePathTemplate(pathTemplate),
		pipeline.WithPipelineUserAgent(cfg.UserAgent),
	}
	if ui != nil {
		configOpts = append(configOpts, pipeline.WithPipelineProbeCallback(ui.probed))
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineStore(db))
	}

	return pipeline.DefaultPipeline(enumerate, pageClient, probeClient, pipelineOpts, configOpts...)
}

// scanUI renders scan progress on standard error. The live status line
// is reserved for single-target interactive runs; everywhere else the
// per-result lines print plainly so piped output stays readable.
type scanUI struct {
	out             io.Writer
	line            *progress.Line
	includeNotFound bool
}

// newScanUI builds the progress renderer for a scan run.
func newScanUI(cfg *config.Config, out *os.File) *scanUI {
	live := !cfg.NoUI && len(cfg.Targets) == 1 && progress.IsTerminal(out)
	return &scanUI{
		out:             out,
		line:            progress.NewLine(out, live),
		includeNotFound: cfg.IncludeNotFound,
	}
}

// beginEnumeration announces the tag-fetching phase.
func (u *scanUI) beginEnumeration(repository string) {
	fmt.Fprintf(u.out, "[Phase 1/2] Fetching release tags from %s...\n", repository)
}

// pageFetched updates the live line as release index pages arrive.
func (u *scanUI) pageFetched(page, candidates int) {
	u.line.Update(progress.PageLine(page, candidates))
}

// candidatesReady closes the enumeration phase and announces the probe
// sweep with the final candidate count.
func (u *scanUI) candidatesReady(total int) {
	u.line.Done()
	fmt.Fprintf(u.out, "[Phase 2/2] Probing target for %d candidate versions...\n", total)
}

// probed records one probe result: a permanent line for results worth
// keeping, then a refreshed status line.
func (u *scanUI) probed(state search.State, result model.ProbeResult) {
	if text, ok := u.resultLine(result); ok {
		u.line.Println(text)
	}
	u.line.Update(progress.ProbeLine(state.Checked, state.Total, state.Elapsed(), result.Version, result.Status, result.StatusCode))
}

// finish flushes the live line at the end of a target's sweep.
func (u *scanUI) finish() {
	u.line.Done()
}

// resultLine formats a probe result as a permanent output line. Absent
// candidates are noise during a long sweep and print only on request.
func (u *scanUI) resultLine(result model.ProbeResult) (string, bool) {
	switch result.Status {
	case model.StatusFound:
		return fmt.Sprintf("  [+] version %s confirmed  %s  %s", result.Version, progress.StatusLabel(result.Status, result.StatusCode), result.URL), true
	case model.StatusRedirect:
		line := fmt.Sprintf("  [>] %s redirected  %s", result.Version, progress.StatusLabel(result.Status, result.StatusCode))
		if result.Location != "" {
			line += "  -> " + result.Location
		}
		return line, true
	case model.StatusNetworkFailed:
		return fmt.Sprintf("  [!] %s no response: %s", result.Version, result.Error), true
	case model.StatusOther:
		return fmt.Sprintf("  [?] %s unexpected  %s", result.Version, progress.StatusLabel(result.Status, result.StatusCode)), true
	case model.StatusAbsent:
		if u.includeNotFound {
			return fmt.Sprintf("  [-] %s absent  %s", result.Version, progress.StatusLabel(result.Status, result.StatusCode)), true
		}
		return "", false
	default:
		return "", false
	}
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, clients *scanClients, db *database.ScanDB, logger *slog.Logger) error {
	ui := newScanUI(cfg, os.Stderr)

	// Targets sharing a repository share one enumeration step, so the
	// candidate list is fetched once per repository.
	steps := make(map[string]*pipeline.EnumerateStep)

	var hits int
	var firstErr error
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		profile := profileFor(cfg, target)
		repo := repositoryFor(cfg, profile)
		step, ok := steps[repo]
		if !ok {
			step = newEnumerateStep(cfg, clients.index, repo, tokenFor(cfg, profile), ui, logger)
			steps[repo] = step
		}

		p := createPipelineForTarget(cfg, clients, step, profile, ui, db, logger)
		scanReport := model.NewScanReport(target)

		fmt.Fprintf(os.Stderr, "Scanning %s...\n", target)
		ui.beginEnumeration(repo)
		startTime := time.Now()

		err := p.Execute(ctx, scanReport)
		ui.finish()
		if err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n\n", target, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		fmt.Fprintf(os.Stderr, "Scan completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if scanReport.IdentifiedVersion != "" {
			hits++
		}

		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("failed to output report", "target", target, "error", err)
		}
	}

	return scanOutcome(hits, firstErr)
}

// runBatchScan scans multiple targets concurrently.
func runBatchScan(ctx context.Context, cfg *config.Config, clients *scanClients, db *database.ScanDB, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Starting batch scan of %d targets (concurrency: %d)...\n\n", len(cfg.Targets), cfg.BatchSize)

	var profile config.TargetProfile
	if cfg.TargetProfiles != nil {
		if len(cfg.TargetProfiles.Targets) > 0 {
			logger.Warn("per-target profiles are ignored in batch mode")
			fmt.Fprintf(os.Stderr, "Warning: Per-target profiles are ignored in batch mode. Use sequential mode (--batch 1) to apply them.\n\n")
		}
		profile = cfg.TargetProfiles.Defaults
	}

	// The whole batch shares one enumeration step: however many targets
	// run, the candidate list costs a single fetch.
	enumerate := newEnumerateStep(cfg, clients.index, repositoryFor(cfg, profile), tokenFor(cfg, profile), nil, logger)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForTarget(cfg, clients, enumerate, profile, nil, db, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	var completed, hits int
	var firstErr error
	startTime := time.Now()

	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, _ int) {
		mu.Lock()
		defer mu.Unlock()
		completed++

		if scanReport.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Scan failed: %s: %v\n", completed, len(cfg.Targets), scanReport.Target, scanReport.Error)
			if firstErr == nil {
				firstErr = scanReport.Error
			}
			return
		}

		fmt.Fprintf(os.Stderr, "[%d/%d] Scan completed: %s\n", completed, len(cfg.Targets), scanReport.Target)
		if scanReport.IdentifiedVersion != "" {
			hits++
		}
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("failed to output report", "target", scanReport.Target, "error", err)
		}
	})

	fmt.Fprintf(os.Stderr, "\nBatch scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	return scanOutcome(hits, firstErr)
}

// scanOutcome folds per-target results into the run's terminal error.
// A confirmed hit anywhere makes the run a success. Failed targets
// surface before the no-hit verdict so a broken enumeration is not
// mistaken for a clean miss.
func scanOutcome(hits int, firstErr error) error {
	if hits > 0 {
		return nil
	}
	if firstErr != nil {
		return firstErr
	}
	return search.ErrNoHits
}

// outputReport writes the scan report in the configured format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		// Reports may reveal what runs where; keep them owner-readable.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() {
			_ = f.Close() //nolint:errcheck // Best effort close
		}()
		output = f
	}

	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(scanReport)
	return err
}
