// Package cmd provides the root command and CLI setup for mend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"mend.dev/pkg/mend/internal/adapter"
	"mend.dev/pkg/mend/internal/controller"
	"mend.dev/pkg/mend/internal/domain"
	m "mend.dev/pkg/mend/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var programAdapter adapter.ProgramAdapter
var suiteAdapter adapter.SuiteAdapter
var reportStore adapter.ReportStore
var instrumentor domain.Instrumentor
var collector domain.Collector
var orchestrator domain.Orchestrator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// suiteFlag points at the test suite file used by repair and rank.
var suiteFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	programAdapter = adapter.NewLocalProgramAdapter(fsAdapter)
	suiteAdapter = adapter.NewYAMLSuiteAdapter(fsAdapter)
	reportStore = adapter.NewYAMLReportStore(fsAdapter)
	instrumentor = domain.NewInstrumentor()
	collector = domain.NewCollector()
	orchestrator = domain.NewOrchestrator(
		instrumentor,
		collector,
		domain.NewGenerator(),
		domain.NewValidator(instrumentor),
	)
	workflow = domain.NewWorkflow(
		programAdapter,
		suiteAdapter,
		reportStore,
		ui,
		orchestrator,
		instrumentor,
		collector,
	)
}

const rootLongDescription = `Mend is an automatic program repair tool for a small Go subset. Given a
program and a test suite with at least one failing test, it localizes the
fault with spectrum-based formulas, mutates suspicious statements using
code fragments harvested from the program itself, and searches for a
patch that makes every test pass.`

const repairLongDescription = `Repair the given source files against a test suite.

Positional arguments name the source files of the program under repair.
The suite file (YAML) declares the entry function and its test cases.`

const rankLongDescription = `Rank statements by suspiciousness without attempting a repair.

Runs the suite once, collects per-statement coverage and prints the
ranked statement list.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mend",
		Short: "Automatic program repair tool",
		Long:  rootLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for repair reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(&suiteFlag, suiteFlagName, "s", viper.GetString(suiteFlagName), "path to the test suite file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(suiteFlagName), suiteFlagName)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
