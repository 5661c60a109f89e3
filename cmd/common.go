package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opsworks"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/filter"
	"github.com/ikorchynskyi/opsworks-curator/internal/inventory"
	"github.com/ikorchynskyi/opsworks-curator/internal/render"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

type stage func(context.Context, []types.Stack) ([]types.Stack, error)

// loadStacks lists the stacks, runs the before stages, narrows the result with
// the --filter expressions and runs the after stages on what is left.
func loadStacks(ctx context.Context, expressions []filter.Expression, before []stage, after []stage) ([]types.Stack, error) {
	stacks, err := inventoryClient.ListStacks(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range before {
		if stacks, err = s(ctx, stacks); err != nil {
			return nil, err
		}
	}

	stacks = filter.ApplyExpressions(stacks, expressions)
	logger.Debug("filtered stacks", zap.Int("count", len(stacks)), zap.Stringers("filters", expressions))

	for _, s := range after {
		if len(stacks) == 0 {
			break
		}
		if stacks, err = s(ctx, stacks); err != nil {
			return nil, err
		}
	}
	return stacks, nil
}

var inventoryClient *inventory.Client
var awsCfg aws.Config

// initClients parses the filters before any remote call is made.
func initClients(ctx context.Context) ([]filter.Expression, error) {
	expressions, err := filter.Parse(filter.Split(filterFlag))
	if err != nil {
		return nil, err
	}
	if awsCfg, err = initAWS(ctx); err != nil {
		return nil, err
	}
	inventoryClient = newInventoryClient(awsCfg)
	return expressions, nil
}

func output(w io.Writer, stacks []types.Stack, opts render.TreeOptions) error {
	switch outputFormat {
	case render.FormatYAML:
		return render.YAML(w, stacks)
	case render.FormatRaw:
		return render.Raw(w, stacks)
	}
	return render.Tree(w, stacks, opts)
}

// writeCommand is an OpsWorks command run on every filtered stack
type writeCommand struct {
	command         types.Command
	needsApps       bool
	updateCookbooks bool
	strict          bool
}

func addWriteFlags(cmd *cobra.Command, w *writeCommand, withUpdate bool) {
	if withUpdate {
		cmd.Flags().BoolVarP(&w.updateCookbooks, "update-cookbooks", "u", false, "Update custom cookbooks first")
	}
	cmd.Flags().BoolVar(&w.strict, "strict", false, "Exit with an error when any deployment fails")
	cmd.Flags().StringVar(&w.command.Comment, "comment", "", "Deployment comment")
}

func (w *writeCommand) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	expressions, err := initClients(ctx)
	if err != nil {
		return err
	}

	before := []stage{inventoryClient.FetchLayers}
	if w.needsApps {
		before = append(before, inventoryClient.FetchApps)
	}
	stacks, err := loadStacks(ctx, expressions, before, nil)
	if err != nil {
		return err
	}
	if len(stacks) == 0 {
		return curator.ErrNoTargets
	}

	out := cmd.OutOrStdout()
	if err := render.Tree(out, stacks, render.TreeOptions{Layers: true}); err != nil {
		return err
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	prompt := fmt.Sprintf("Run %s on %d stacks?", w.command.Name, len(stacks))
	if err := confirm(ctx, cmd.InOrStdin(), out, assumeYes, interactive, prompt); err != nil {
		return err
	}

	c := curator.New(opsworks.NewFromConfig(awsCfg), func(o *curator.Options) {
		o.Logger = logger
		o.PollInterval = cfg.PollInterval
		o.Timeout = cfg.Timeout
		o.LogWaitAttempts = cfg.Debug
	})

	if w.updateCookbooks {
		report, err := c.Run(ctx, stacks, types.Command{Name: curator.CommandNameUpdateCustomCookbooks, Comment: w.command.Comment})
		if err != nil {
			return err
		}
		if report.Failed() {
			render.ReportTable(out, report)
			return fmt.Errorf("updating custom cookbooks: %s", report.Summary())
		}
	}

	report, err := c.Run(ctx, stacks, w.command)
	if err != nil {
		return err
	}
	render.ReportTable(out, report)
	if w.strict && report.Failed() {
		return errors.New(report.Summary())
	}
	return nil
}
