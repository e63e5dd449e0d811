package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mend.dev/pkg/mend/internal/domain"
	m "mend.dev/pkg/mend/internal/model"
)

var rankFormulaFlag string
var rankTieBreakFlag string
var rankSeedFlag int64

// rankCmd represents the rank command.
var rankCmd = newRankCmd()

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank [files...]",
		Short: "Rank statements by suspiciousness",
		Long:  rankLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogger("", viper.GetBool(logVerboseKey))

			return workflow.Rank(context.Background(), domain.RankArgs{
				Programs: parsePaths(args),
				Suite:    m.Path(viper.GetString(suiteFlagName)),
				Formula:  viper.GetString(formulaConfigKey),
				TieBreak: viper.GetString(tieBreakConfigKey),
				Seed:     viper.GetInt64(seedConfigKey),
			})
		},
	}

	configureRankFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func configureRankFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rankFormulaFlag, formulaFlagName, "f", viper.GetString(formulaConfigKey), "suspiciousness formula (tarantula or ochiai)")
	bindFlagToConfig(cmd.Flags().Lookup(formulaFlagName), formulaConfigKey)

	cmd.Flags().StringVar(&rankTieBreakFlag, tieBreakFlagName, viper.GetString(tieBreakConfigKey), "ordering of equally suspicious statements (line or random)")
	bindFlagToConfig(cmd.Flags().Lookup(tieBreakFlagName), tieBreakConfigKey)

	cmd.Flags().Int64Var(&rankSeedFlag, seedFlagName, viper.GetInt64(seedConfigKey), "seed for random tie-breaking")
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), seedConfigKey)
}
