package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/doctor"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/spf13/cobra"
)

type doctorOptions struct {
	json bool
	fix  bool
}

var doctorOpts doctorOptions

var doctorCmd = &cobra.Command{
	Use:   "doctor [port]",
	Short: "Check the toolchain, serial device and config",
	Long: `Run diagnostics for everything the console depends on: the config file,
the ESP-IDF environment, the backtrace resolver, the serial device and the
firmware ELF.

Examples:
  idfrun doctor
  idfrun doctor /dev/ttyACM0
  idfrun doctor --fix
  idfrun doctor --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorOpts, args)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOpts.json, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorOpts.fix, "fix", false, "attempt automatic fixes where possible")
	doctorCmd.ValidArgsFunction = completePorts
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(out io.Writer, opts doctorOptions, args []string) error {
	checks := collectChecks(rootOpts.configPath, args)

	results := doctor.RunAllParallel(checks)
	if opts.fix {
		results = doctor.Fix(checks, results)
	}

	if opts.json {
		return outputDoctorJSON(out, checks, results)
	}
	outputDoctorText(out, checks, results, opts.fix)
	return nil
}

// collectChecks gathers the checks for the effective config. A broken
// config still yields tool and device checks against the defaults.
func collectChecks(configPath string, args []string) []doctor.Check {
	checks := doctor.NewConfigChecks(configPath)

	cfg, _, err := config.LoadOrDefault(configPath)
	if err != nil {
		cfg = config.DefaultConfig()
		cfg.ELF = config.ExpandPath(cfg.ELF)
	}
	if len(args) == 1 {
		cfg.Port = args[0]
	}

	checks = append(checks, doctor.NewToolChecks(cfg)...)
	checks = append(checks, doctor.NewDeviceChecks(cfg.Port, cfg.ELF)...)
	return checks
}

func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := doctor.GroupByCategory(checks)
	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}

	for _, cat := range doctor.Categories {
		indices, ok := grouped[cat]
		if !ok {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult, fixed bool) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("idfrun Diagnostic Report"))
	fmt.Fprintln(out)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.Categories {
		indices, ok := grouped[category]
		if !ok || len(indices) == 0 {
			continue
		}

		fmt.Fprintln(out, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(out, results[idx])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, ui.FormatDivider(60))
	fmt.Fprintln(out)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Render(ui.SymbolFail), doctor.Summary(results))
		if doctor.FixableCount(results) > 0 && !fixed {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Run with %s to attempt automatic fixes where possible.\n", mutedStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(out)
}

func renderCheckResult(out io.Writer, result doctor.CheckResult) {
	symbol := ui.SymbolComplete
	color := ui.ColorSuccess
	switch result.Status {
	case doctor.StatusWarn:
		color = ui.ColorWarning
	case doctor.StatusFail:
		symbol = ui.SymbolFail
		color = ui.ColorError
	}

	fmt.Fprintf(out, "  %s %s\n", lipgloss.NewStyle().Foreground(color).Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", muted.Render(line))
		}
	}
}
