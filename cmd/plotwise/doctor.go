// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check the binary, configuration, graph store, a running server and free disk space.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", "", "server address to check (default: networking.listen)")

	return cmd
}

// checkResult is one diagnostic line. Failed checks print in warnStyle.
type checkResult struct {
	text string
	ok   bool
}

func pass(format string, args ...any) checkResult {
	return checkResult{text: fmt.Sprintf(format, args...), ok: true}
}

func fail(format string, args ...any) checkResult {
	return checkResult{text: fmt.Sprintf(format, args...)}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr := serverAddress(cmd)
	dataDir := resolveDataDir()

	checks := []struct {
		name string
		run  func() checkResult
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Server", func() checkResult { return checkServer(addr) }},
		{"Config", checkConfig},
		{"Database", func() checkResult { return checkDatabase(cmd) }},
		{"Disk Space", func() checkResult { return checkDiskSpace(dataDir) }},
	}

	failed := 0
	for _, c := range checks {
		res := c.run()
		text := res.text
		if !res.ok {
			failed++
			text = warnStyle.Render(text)
		}
		if _, err := fmt.Fprintf(w, "%-12s %s\n", c.name+":", text); err != nil {
			return err
		}
	}

	summary := successStyle.Render("all checks passed")
	if failed > 0 {
		summary = warnStyle.Render(fmt.Sprintf("%d of %d checks need attention", failed, len(checks)))
	}
	_, err := fmt.Fprintln(w, "\n"+summary)
	return err
}

// resolveDataDir returns the data directory from viper or the default.
func resolveDataDir() string {
	if dataDir := viper.GetString("data_dir"); dataDir != "" {
		return dataDir
	}
	return "./data"
}

func checkBinary() checkResult {
	exe, err := os.Executable()
	if err != nil {
		exe = "unknown path"
	}
	return pass("%s at %s", currentBuild(), exe)
}

func checkPlatform() checkResult {
	return pass("%s/%s with %d CPUs, %s", runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), runtime.Version())
}

func checkServer(addr string) checkResult {
	var body struct {
		Status string `json:"status"`
	}
	if err := newAPIClient(addr).getJSON("/health", &body); err != nil {
		if pwerr.HasCode(err, pwerr.CodeCLIServerNotRunning) {
			return fail("not running at %s (run 'plotwise serve')", addr)
		}
		return fail("error: %s", err)
	}
	return pass("%s at %s", body.Status, addr)
}

func checkConfig() checkResult {
	source := "using defaults (no config file found)"
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		source = "loaded from " + cfgFile
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail("%s, invalid: %s", source, err)
	}
	return pass("%s, %s backend", source, cfg.Storage.Backend)
}

// checkDatabase reports graph size without creating a missing SQLite file.
func checkDatabase(cmd *cobra.Command) checkResult {
	cfg, err := loadConfig()
	if err != nil {
		return fail("invalid config: %s", err)
	}
	if cfg.Storage.Backend == "memory" {
		return pass("memory backend (nothing persisted)")
	}

	path := cfg.DatabasePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fail("no database at %s (run 'plotwise seed')", path)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fail("error: %s", err)
	}
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return fail("error: %s", err)
	}
	if stats.Nodes == 0 {
		return fail("empty database at %s (run 'plotwise seed')", path)
	}
	return pass("%d nodes, %d edges in %s", stats.Nodes, stats.Edges, path)
}

// lowDiskSpace is the free-space floor below which the check fails.
const lowDiskSpace = 100 << 20

// checkDiskSpace measures the data dir, or its nearest existing ancestor.
func checkDiskSpace(dataDir string) checkResult {
	path := filepath.Clean(dataDir)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fail("unable to check %s: %s", path, err)
	}

	avail := stat.Bavail * uint64(stat.Bsize)
	if avail < lowDiskSpace {
		return fail("only %s free on %s", formatBytes(avail), path)
	}
	return pass("%s free on %s", formatBytes(avail), path)
}

// formatBytes renders b with one decimal in the largest binary unit
// that keeps the value at least 1.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d bytes", b)
	}
	units := []string{"KB", "MB", "GB", "TB", "PB"}
	value := float64(b) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
