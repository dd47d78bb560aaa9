package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"glossaudio/internal/pipeline"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the archives the next import would process",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline(false)
			if err != nil {
				return err
			}
			plan, err := p.Plan(cmd.Context())
			if err != nil {
				return err
			}
			printPlan(cmd, plan)
			return nil
		},
	}
}

func printPlan(cmd *cobra.Command, plan pipeline.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User: %s\n", plan.User)
	fmt.Fprintf(out, "Directory: %s\n\n", plan.Dir)
	fmt.Fprintln(out, pipeline.Instructions)
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(plan.Archives))
	for i, name := range plan.Archives {
		rows = append(rows, []string{strconv.Itoa(i + 1), name})
	}
	fmt.Fprintln(out, renderTable(planColumns, rows))
}

// newPipeline builds a pipeline from the loaded config. skipLinked forces
// the skip-linked switch on regardless of config.
func (c *commandContext) newPipeline(skipLinked bool) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	runCfg := *cfg
	if skipLinked {
		runCfg.Import.SkipLinked = true
	}
	return pipeline.FromConfig(&runCfg, store, logger)
}
