package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mend.dev/pkg/mend/internal/domain"
	m "mend.dev/pkg/mend/internal/model"
)

var repairFormulaFlag string
var repairScopeFlag string
var repairPolicyFlag string
var repairParallelFlag int
var repairTestTimeoutFlag time.Duration
var repairTieBreakFlag string
var repairSeedFlag int64

// newRepairWorkflow builds the engine stack for a repair run. A variable so
// tests can substitute a mock workflow.
var newRepairWorkflow = func(testTimeout time.Duration) domain.Workflow {
	inst := domain.NewInstrumentor(domain.WithTestTimeout(testTimeout))
	orch := domain.NewOrchestrator(
		inst,
		collector,
		domain.NewGenerator(),
		domain.NewValidator(inst),
	)

	return domain.NewWorkflow(
		programAdapter,
		suiteAdapter,
		reportStore,
		ui,
		orch,
		inst,
		collector,
	)
}

// repairCmd represents the repair command.
var repairCmd = newRepairCmd()

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [files...]",
		Short: "Search for a patch that makes the test suite pass",
		Long:  repairLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			timeout := viper.GetDuration(testTimeoutConfigKey)

			return newRepairWorkflow(timeout).Repair(context.Background(), domain.RepairArgs{
				Programs: parsePaths(args),
				Suite:    m.Path(viper.GetString(suiteFlagName)),
				Reports:  m.Path(viper.GetString(outputFlagName)),
				Config: domain.RepairConfig{
					Formula:  viper.GetString(formulaConfigKey),
					TieBreak: viper.GetString(tieBreakConfigKey),
					Seed:     viper.GetInt64(seedConfigKey),
					Scope:    viper.GetString(scopeConfigKey),
					Policy:   viper.GetString(policyConfigKey),
					Parallel: viper.GetInt(parallelConfigKey),
				},
			})
		},
	}

	configureRepairFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func configureRepairFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&repairFormulaFlag, formulaFlagName, "f", viper.GetString(formulaConfigKey), "suspiciousness formula (tarantula or ochiai)")
	bindFlagToConfig(cmd.Flags().Lookup(formulaFlagName), formulaConfigKey)

	cmd.Flags().StringVar(&repairScopeFlag, scopeFlagName, viper.GetString(scopeConfigKey), "ingredient harvesting scope (file, package or codebase)")
	bindFlagToConfig(cmd.Flags().Lookup(scopeFlagName), scopeConfigKey)

	cmd.Flags().StringVar(&repairPolicyFlag, policyFlagName, viper.GetString(policyConfigKey), "search policy (first-found or exhaustive)")
	bindFlagToConfig(cmd.Flags().Lookup(policyFlagName), policyConfigKey)

	cmd.Flags().IntVarP(&repairParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel patch validation workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().DurationVar(&repairTestTimeoutFlag, testTimeoutFlagName, defaultTestTimeout, "per-test execution timeout")
	bindFlagToConfig(cmd.Flags().Lookup(testTimeoutFlagName), testTimeoutConfigKey)

	cmd.Flags().StringVar(&repairTieBreakFlag, tieBreakFlagName, viper.GetString(tieBreakConfigKey), "ordering of equally suspicious statements (line or random)")
	bindFlagToConfig(cmd.Flags().Lookup(tieBreakFlagName), tieBreakConfigKey)

	cmd.Flags().Int64Var(&repairSeedFlag, seedFlagName, viper.GetInt64(seedConfigKey), "seed for random tie-breaking")
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), seedConfigKey)
}
