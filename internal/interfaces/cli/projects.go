package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wmcornejo/reView/pkg/client"
	"github.com/wmcornejo/reView/pkg/errors"
)

// NewProjectsCmd creates the projects command group.
func NewProjectsCmd() *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List and inspect reV projects on the API server",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the names of all loaded projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(cmd)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show one project's scenarios, variables, units, and titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsShow(cmd, args[0])
		},
	}

	projectsCmd.AddCommand(listCmd, showCmd)
	return projectsCmd
}

func runProjectsList(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.Validation("no API server configured; pass --server or set server host/port")
	}

	names, err := cliCtx.Client.Projects().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	return PrintResult(cmd, projectList{Projects: names, Count: len(names)})
}

func runProjectsShow(cmd *cobra.Command, name string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.Validation("no API server configured; pass --server or set server host/port")
	}

	project, err := cliCtx.Client.Projects().Get(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("fetching project %q: %w", name, err)
	}

	return PrintResult(cmd, projectDetail{project})
}

// projectList renders project names for every output format.
type projectList struct {
	Projects []string `json:"projects"`
	Count    int      `json:"count"`
}

func (p projectList) TableHeaders() []string { return []string{"NAME"} }

func (p projectList) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Projects))
	for _, name := range p.Projects {
		rows = append(rows, []string{name})
	}
	return rows
}

func (p projectList) String() string {
	return strings.Join(p.Projects, "\n")
}

// projectDetail renders one project's effective configuration.
type projectDetail struct {
	*client.Project
}

func (p projectDetail) TableHeaders() []string {
	return []string{"VARIABLE", "TITLE", "UNITS", "SCALE"}
}

func (p projectDetail) TableRows() [][]string {
	vars := make([]string, 0, len(p.Units))
	for v := range p.Units {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	rows := make([][]string, 0, len(vars))
	for _, v := range vars {
		rows = append(rows, []string{v, p.Titles[v], p.Units[v], formatScale(p.Scales[v])})
	}
	return rows
}

func (p projectDetail) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project:   %s\n", p.Name)
	fmt.Fprintf(&sb, "Directory: %s\n", p.Directory)
	fmt.Fprintf(&sb, "Scenarios: %s\n", strings.Join(p.Scenarios, ", "))
	if p.CapacityColumn != "" {
		fmt.Fprintf(&sb, "Capacity:  %s\n", p.CapacityColumn)
	}
	if len(p.Units) > 0 {
		sb.WriteString("\n")
		sb.WriteString(FormatTable(p.TableHeaders(), p.TableRows()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatScale prints a configured display bound; unset sides show as "auto".
func formatScale(s client.Scale) string {
	if s.Min == nil && s.Max == nil {
		return ""
	}
	bound := func(v *float64) string {
		if v == nil {
			return "auto"
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return fmt.Sprintf("[%s, %s]", bound(s.Min), bound(s.Max))
}
