package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wmcornejo/reView/internal/domain/project"
	"github.com/wmcornejo/reView/pkg/errors"
)

// NewValidateCmd creates the validate command, which parses every project
// config in the configured directory and reports per-file results.
func NewValidateCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every project config file",
		Long: "validate parses and validates each .json/.yaml/.yml file in the project\n" +
			"config directory and exits non-zero if any fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, configDir)
		},
	}

	cmd.Flags().StringVar(&configDir, "dir", "", "project config directory (default: from app config)")
	return cmd
}

// validationResult is one project config file's outcome.
type validationResult struct {
	File    string `json:"file"`
	Project string `json:"project,omitempty"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// validationReport renders the per-file outcomes for every output format.
type validationReport struct {
	Dir     string             `json:"dir"`
	Results []validationResult `json:"results"`
	Failed  int                `json:"failed"`
}

func (r validationReport) TableHeaders() []string {
	return []string{"FILE", "PROJECT", "STATUS", "ERROR"}
}

func (r validationReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		status := "ok"
		if !res.OK {
			status = "FAIL"
		}
		rows = append(rows, []string{res.File, res.Project, status, res.Error})
	}
	return rows
}

func (r validationReport) String() string {
	var sb strings.Builder
	for _, res := range r.Results {
		if res.OK {
			fmt.Fprintf(&sb, "%s %s (%s)\n", color.GreenString("ok"), res.File, res.Project)
		} else {
			fmt.Fprintf(&sb, "%s %s: %s\n", color.RedString("FAIL"), res.File, res.Error)
		}
	}
	fmt.Fprintf(&sb, "%d project config(s), %d failed", len(r.Results), r.Failed)
	return sb.String()
}

func runValidate(cmd *cobra.Command, configDir string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	if configDir == "" {
		configDir = cliCtx.Config.Projects.ConfigDir
	}
	if configDir == "" {
		return errors.Validation("no project config directory; pass --dir or set projects.config_dir")
	}

	entries, err := os.ReadDir(configDir)
	if err != nil {
		return fmt.Errorf("reading config directory %s: %w", configDir, err)
	}

	report := validationReport{Dir: configDir}
	for _, entry := range entries {
		if entry.IsDir() || !isProjectConfigFile(entry.Name()) {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		cfg, loadErr := project.LoadConfig(path, cliCtx.Config.Projects.DataDir, nil)
		res := validationResult{File: entry.Name(), OK: loadErr == nil}
		if loadErr != nil {
			res.Error = loadErr.Error()
			report.Failed++
		} else {
			res.Project = cfg.Name
		}
		report.Results = append(report.Results, res)
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].File < report.Results[j].File
	})

	if len(report.Results) == 0 {
		return errors.NotFound(fmt.Sprintf("no project config files found in %s", configDir))
	}

	if err := PrintResult(cmd, report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d project config(s) failed validation", report.Failed, len(report.Results))
	}
	return nil
}

// isProjectConfigFile reports whether a directory entry looks like a project
// config.
func isProjectConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
