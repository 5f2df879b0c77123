package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/model"
	"github.com/nao1215/verscan/internal/search"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [base-url...]" {
			t.Errorf("expected use 'scan [base-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has repo flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("repo")
		if flag == nil {
			t.Fatal("expected repo flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultRepository {
			t.Errorf("expected default %q, got %q", config.DefaultRepository, flag.DefValue)
		}
	})

	t.Run("has per-page flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("per-page")
		if flag == nil {
			t.Fatal("expected per-page flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has all flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("all")
		if flag == nil {
			t.Fatal("expected all flag")
		}
		if flag.Shorthand != "a" {
			t.Errorf("expected shorthand 'a', got %q", flag.Shorthand)
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("delay")
		if flag == nil {
			t.Fatal("expected delay flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has path-template flag without shorthand", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("path-template")
		if flag == nil {
			t.Fatal("expected path-template flag")
		}
		if flag.Shorthand != "" {
			t.Errorf("expected no shorthand, got %q", flag.Shorthand)
		}
		if flag.DefValue != "" {
			t.Errorf("expected empty default, got %q", flag.DefValue)
		}
	})

	t.Run("has include-404 flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("include-404") == nil {
			t.Fatal("expected include-404 flag")
		}
	})

	t.Run("has no-ui flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-ui") == nil {
			t.Fatal("expected no-ui flag")
		}
	})

	t.Run("has no-inspect flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-inspect") == nil {
			t.Fatal("expected no-inspect flag")
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has external-tor flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("external-tor")
		if flag == nil {
			t.Fatal("expected external-tor flag")
		}
		if flag.Shorthand != "e" {
			t.Errorf("expected shorthand 'e', got %q", flag.Shorthand)
		}
	})

	t.Run("has tor-timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("tor-timeout")
		if flag == nil {
			t.Fatal("expected tor-timeout flag")
		}
		if flag.Shorthand != "T" {
			t.Errorf("expected shorthand 'T', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has markdown flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("markdown")
		if flag == nil {
			t.Fatal("expected markdown flag")
		}
		if flag.Shorthand != "m" {
			t.Errorf("expected shorthand 'm', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("does not have save flag (always saves)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("save")
		if flag != nil {
			t.Error("save flag should not exist (database saving is always enabled)")
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(true)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(false)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get scan subcommand
		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		result := getVerboseFlag(scanCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://sso.example.com" {
			t.Errorf("expected targets [https://sso.example.com], got %v", cfg.Targets)
		}
		if cfg.UseTor {
			t.Error("expected UseTor to be false")
		}
		if cfg.Repository != config.DefaultRepository {
			t.Errorf("expected repository %q, got %q", config.DefaultRepository, cfg.Repository)
		}
		if cfg.PathTemplate != config.DefaultAssetPathTemplate {
			t.Errorf("expected default path template, got %q", cfg.PathTemplate)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir == "" {
			t.Error("expected DBDir to be set")
		}
	})

	t.Run("builds config with external tor", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("external-tor", "127.0.0.1:9150")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.UseTor {
			t.Error("expected UseTor to be true")
		}
		if cfg.TorProxyAddress != "127.0.0.1:9150" {
			t.Errorf("expected TorProxyAddress '127.0.0.1:9150', got %q", cfg.TorProxyAddress)
		}
	})

	t.Run("builds config with custom repository", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("repo", "example/fork")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Repository != "example/fork" {
			t.Errorf("expected repository 'example/fork', got %q", cfg.Repository)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("batch", "8")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 8 {
			t.Errorf("expected BatchSize 8, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with exhaustive sweep", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("all", "true")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Exhaustive {
			t.Error("expected Exhaustive to be true")
		}
	})

	t.Run("builds config with probe delay", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("delay", "250ms")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ProbeDelay.Milliseconds() != 250 {
			t.Errorf("expected ProbeDelay 250ms, got %s", cfg.ProbeDelay)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("builds config with UI and inspect disabled", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-ui", "true")
		_ = cmd.Flags().Set("no-inspect", "true")
		_ = cmd.Flags().Set("include-404", "true")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.NoUI {
			t.Error("expected NoUI to be true")
		}
		if !cfg.NoInspect {
			t.Error("expected NoInspect to be true")
		}
		if !cfg.IncludeNotFound {
			t.Error("expected IncludeNotFound to be true")
		}
	})

	t.Run("builds config with multiple targets", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 3 {
			t.Errorf("expected 3 targets, got %d", len(cfg.Targets))
		}
	})

	t.Run("overrides path template from flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("path-template", "/assets/app-%s.js")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.PathTemplate != "/assets/app-%s.js" {
			t.Errorf("expected path template '/assets/app-%%s.js', got %q", cfg.PathTemplate)
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "verscan.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  probeDelayMs: 100
targets:
  sso.example.com:
    repository: example/fork
    headers:
      Cookie: gate=knock
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.TargetProfiles == nil {
			t.Fatal("expected TargetProfiles to be loaded")
		}
		if cfg.TargetProfiles.Defaults.ProbeDelayMS != 100 {
			t.Errorf("expected default probeDelayMs 100, got %d", cfg.TargetProfiles.Defaults.ProbeDelayMS)
		}
		profile := cfg.TargetProfiles.GetTargetProfile("sso.example.com")
		if profile.Repository != "example/fork" {
			t.Errorf("expected repository 'example/fork', got %q", profile.Repository)
		}
		if profile.Headers["Cookie"] != "gate=knock" {
			t.Errorf("expected Cookie header, got %v", profile.Headers)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Create an invalid config file
		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		_, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
		if !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected 'configuration file not found' error, got: %v", err)
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{"https://sso.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})
}

// TestProfileFor tests per-target profile resolution.
func TestProfileFor(t *testing.T) {
	t.Parallel()

	t.Run("returns empty profile for nil TargetProfiles", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			TargetProfiles: nil,
		}
		result := profileFor(cfg, "https://sso.example.com")
		if result.Repository != "" {
			t.Error("expected empty repository")
		}
	})

	t.Run("returns exact host match", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			TargetProfiles: &config.File{
				Targets: map[string]config.TargetProfile{
					"sso.example.com": {
						Repository:   "example/fork",
						ProbeDelayMS: 50,
					},
				},
			},
		}
		result := profileFor(cfg, "https://sso.example.com")
		if result.Repository != "example/fork" {
			t.Errorf("expected repository 'example/fork', got %q", result.Repository)
		}
		if result.ProbeDelayMS != 50 {
			t.Errorf("expected probeDelayMs 50, got %d", result.ProbeDelayMS)
		}
	})

	t.Run("matches host regardless of port", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			TargetProfiles: &config.File{
				Targets: map[string]config.TargetProfile{
					"sso.example.com": {
						Repository: "example/fork",
					},
				},
			},
		}
		result := profileFor(cfg, "https://sso.example.com:8443")
		if result.Repository != "example/fork" {
			t.Errorf("expected repository 'example/fork', got %q", result.Repository)
		}
	})

	t.Run("returns defaults when no host match", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			TargetProfiles: &config.File{
				Defaults: config.TargetProfile{
					ProbeDelayMS: 200,
				},
				Targets: map[string]config.TargetProfile{},
			},
		}
		result := profileFor(cfg, "https://other.example.com")
		if result.ProbeDelayMS != 200 {
			t.Errorf("expected probeDelayMs 200, got %d", result.ProbeDelayMS)
		}
	})
}

// TestRepositoryFor tests repository resolution from profiles.
func TestRepositoryFor(t *testing.T) {
	t.Parallel()

	t.Run("profile repository wins", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{Repository: "goauthentik/authentik"}
		profile := config.TargetProfile{Repository: "example/fork"}
		if got := repositoryFor(cfg, profile); got != "example/fork" {
			t.Errorf("expected 'example/fork', got %q", got)
		}
	})

	t.Run("falls back to global repository", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{Repository: "goauthentik/authentik"}
		if got := repositoryFor(cfg, config.TargetProfile{}); got != "goauthentik/authentik" {
			t.Errorf("expected 'goauthentik/authentik', got %q", got)
		}
	})
}

// TestTokenFor tests token resolution from profiles.
func TestTokenFor(t *testing.T) {
	t.Run("reads profile token environment variable", func(t *testing.T) {
		t.Setenv("VERSCAN_TEST_TOKEN", "profile-token")
		cfg := &config.Config{Token: "global-token"}
		profile := config.TargetProfile{TokenEnv: "VERSCAN_TEST_TOKEN"}
		if got := tokenFor(cfg, profile); got != "profile-token" {
			t.Errorf("expected 'profile-token', got %q", got)
		}
	})

	t.Run("falls back to global token", func(t *testing.T) {
		cfg := &config.Config{Token: "global-token"}
		if got := tokenFor(cfg, config.TargetProfile{}); got != "global-token" {
			t.Errorf("expected 'global-token', got %q", got)
		}
	})
}

// TestScanOutcome tests the fold from per-target results to the run error.
func TestScanOutcome(t *testing.T) {
	t.Parallel()

	t.Run("any hit makes the run a success", func(t *testing.T) {
		t.Parallel()
		if err := scanOutcome(1, errors.New("one target broke")); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("a failed target outranks the no-hit verdict", func(t *testing.T) {
		t.Parallel()
		want := errors.New("enumeration failed")
		err := scanOutcome(0, want)
		if !errors.Is(err, want) {
			t.Errorf("expected the target error, got %v", err)
		}
	})

	t.Run("clean sweep without hits reports no hits", func(t *testing.T) {
		t.Parallel()
		err := scanOutcome(0, nil)
		if !errors.Is(err, search.ErrNoHits) {
			t.Errorf("expected ErrNoHits, got %v", err)
		}
	})
}

// TestPromptForTarget tests the interactive base URL prompt.
func TestPromptForTarget(t *testing.T) {
	t.Parallel()

	t.Run("fails without prompting when stdin is not a terminal", func(t *testing.T) {
		t.Parallel()
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("failed to create pipe: %v", err)
		}
		defer r.Close()
		defer w.Close()

		var out bytes.Buffer
		_, err = promptForTarget(r, &out)
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("expected no prompt output, got %q", out.String())
		}
	})
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	t.Run("outputs JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		report := model.NewScanReport("https://sso.example.com")
		report.IdentifiedVersion = "2024.8.3"

		err := outputReport(cfg, report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created")
		}

		// Verify JSON content
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result struct {
			Version string `json:"version"`
			Report  struct {
				Target            string `json:"target"`
				IdentifiedVersion string `json:"identified_version"`
			} `json:"report"`
		}
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}

		if result.Report.Target != "https://sso.example.com" {
			t.Errorf("expected target 'https://sso.example.com', got %q", result.Report.Target)
		}
		if result.Report.IdentifiedVersion != "2024.8.3" {
			t.Errorf("expected identified version '2024.8.3', got %q", result.Report.IdentifiedVersion)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		report := model.NewScanReport("https://sso.example.com")

		err := outputReport(cfg, report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("outputs text report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.txt")

		cfg := &config.Config{
			JSONReport: false,
			ReportFile: outputPath,
		}

		report := model.NewScanReport("https://sso.example.com")

		err := outputReport(cfg, report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created")
		}

		// Verify text content
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if !bytes.Contains(content, []byte("sso.example.com")) {
			t.Error("expected report to contain the base URL")
		}
	})

	t.Run("outputs markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.md")

		cfg := &config.Config{
			MarkdownReport: true,
			ReportFile:     outputPath,
		}

		report := model.NewScanReport("https://sso.example.com")

		err := outputReport(cfg, report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !bytes.Contains(content, []byte("sso.example.com")) {
			t.Error("expected report to contain the base URL")
		}
	})

	t.Run("outputs to stdout when no file specified", func(t *testing.T) {
		cfg := &config.Config{
			JSONReport: false,
			ReportFile: "",
		}

		report := model.NewScanReport("https://sso.example.com")

		// Capture stdout
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := outputReport(cfg, report)

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			t.Fatalf("failed to read captured stdout: %v", err)
		}
		if !strings.Contains(buf.String(), "sso.example.com") {
			t.Error("expected stdout report to contain the base URL")
		}
	})

	t.Run("initializes SimpleReport if nil", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.txt")

		cfg := &config.Config{
			JSONReport: false,
			ReportFile: outputPath,
		}

		report := model.NewScanReport("https://sso.example.com")
		report.SimpleReport = nil

		err := outputReport(cfg, report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.SimpleReport == nil {
			t.Error("expected SimpleReport to be initialized")
		}
	})
}

// TestResultLine tests the permanent per-result output lines.
func TestResultLine(t *testing.T) {
	t.Parallel()

	t.Run("formats a confirmed version", func(t *testing.T) {
		t.Parallel()
		ui := &scanUI{}
		line, ok := ui.resultLine(model.ProbeResult{
			Version:    "2024.8.3",
			URL:        "https://sso.example.com/static/dist/admin/AdminInterface-2024.8.3.js",
			Status:     model.StatusFound,
			StatusCode: 200,
		})
		if !ok {
			t.Fatal("expected a line for a confirmed version")
		}
		if !strings.Contains(line, "2024.8.3 confirmed") {
			t.Errorf("expected confirmation in line, got %q", line)
		}
		if !strings.Contains(line, "AdminInterface-2024.8.3.js") {
			t.Errorf("expected asset URL in line, got %q", line)
		}
	})

	t.Run("formats a redirect with location", func(t *testing.T) {
		t.Parallel()
		ui := &scanUI{}
		line, ok := ui.resultLine(model.ProbeResult{
			Version:    "2024.8.2",
			Status:     model.StatusRedirect,
			StatusCode: 302,
			Location:   "https://login.example.com/",
		})
		if !ok {
			t.Fatal("expected a line for a redirect")
		}
		if !strings.Contains(line, "redirected") {
			t.Errorf("expected redirect marker, got %q", line)
		}
		if !strings.Contains(line, "https://login.example.com/") {
			t.Errorf("expected location in line, got %q", line)
		}
	})

	t.Run("formats a network failure", func(t *testing.T) {
		t.Parallel()
		ui := &scanUI{}
		line, ok := ui.resultLine(model.ProbeResult{
			Version: "2024.8.1",
			Status:  model.StatusNetworkFailed,
			Error:   "dial tcp: connection refused",
		})
		if !ok {
			t.Fatal("expected a line for a network failure")
		}
		if !strings.Contains(line, "no response") {
			t.Errorf("expected failure marker, got %q", line)
		}
		if !strings.Contains(line, "connection refused") {
			t.Errorf("expected error detail, got %q", line)
		}
	})

	t.Run("hides absent candidates by default", func(t *testing.T) {
		t.Parallel()
		ui := &scanUI{}
		_, ok := ui.resultLine(model.ProbeResult{
			Version:    "2024.8.0",
			Status:     model.StatusAbsent,
			StatusCode: 404,
		})
		if ok {
			t.Error("expected no line for an absent candidate")
		}
	})

	t.Run("shows absent candidates when requested", func(t *testing.T) {
		t.Parallel()
		ui := &scanUI{includeNotFound: true}
		line, ok := ui.resultLine(model.ProbeResult{
			Version:    "2024.8.0",
			Status:     model.StatusAbsent,
			StatusCode: 404,
		})
		if !ok {
			t.Fatal("expected a line for an absent candidate")
		}
		if !strings.Contains(line, "absent") {
			t.Errorf("expected absent marker, got %q", line)
		}
	})
}

// TestRunScanNoTargets tests that runScan returns error when no targets provided.
func TestRunScanNoTargets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.NewConfig()
	cfg.Targets = []string{} // No targets
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runScan(ctx, cfg, logger)
	if !errors.Is(err, config.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

// TestRunScanInvalidTarget tests that runScan rejects an unusable base URL.
func TestRunScanInvalidTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.NewConfig()
	cfg.Targets = []string{"ftp://example.com"}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runScan(ctx, cfg, logger)
	if err == nil {
		t.Fatal("expected error for invalid base URL")
	}
	if !errors.Is(err, model.ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}

// TestRunScanWithContextCancellation tests that runScan stops on a cancelled context.
func TestRunScanWithContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	cfg := config.NewConfig()
	cfg.Targets = []string{"https://sso.example.com"}
	cfg.NoUI = true

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runScan(ctx, cfg, logger)
	if err == nil {
		t.Error("expected error due to cancelled context")
	}
}

// TestRunScanCmdNoArgs tests runScanCmd with no arguments.
func TestRunScanCmdNoArgs(t *testing.T) {
	t.Parallel()

	// NewRootCmd already includes the scan subcommand
	rootCmd := NewRootCmd()
	// Execute "scan" with no args via root command
	rootCmd.SetArgs([]string{"scan"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for no arguments")
	}
	// Test runs have no usable terminal on stdin, so the prompt bails out
	if !errors.Is(err, config.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got: %v", err)
	}
}

// TestRunScanCmdConflictingFormats tests runScanCmd with both --json and --markdown.
func TestRunScanCmdConflictingFormats(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "--json", "--markdown", "https://sso.example.com"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for conflicting report formats")
	}
	if !strings.Contains(err.Error(), "conflicting report formats") {
		t.Errorf("expected 'conflicting report formats' error, got: %v", err)
	}
}
