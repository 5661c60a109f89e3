package curator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/opsworks"
	opsworkstypes "github.com/aws/aws-sdk-go-v2/service/opsworks/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ikorchynskyi/opsworks-curator/internal/inventory"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
	"github.com/ikorchynskyi/opsworks-curator/internal/validator"
)

const (
	CommandNameDeploy                string = "deploy"
	CommandNameExecuteRecipes        string = "execute_recipes"
	CommandNameUpdateCustomCookbooks string = "update_custom_cookbooks"
	CommandNameConfigure             string = "configure"
	CommandNameSetup                 string = "setup"
)

var (
	ErrNoTargets   = errors.New("no stacks matching your filters")
	ErrAppNotFound = errors.New("could not find app")
)

// API is the part of the OpsWorks client the curator drives.
type API interface {
	DescribeDeploymentsAPIClient
	CreateDeployment(context.Context, *opsworks.CreateDeploymentInput, ...func(*opsworks.Options)) (*opsworks.CreateDeploymentOutput, error)
}

// Options are options for Curator
type Options struct {
	Logger *zap.Logger

	// PollInterval is the delay between two deployment status queries.
	PollInterval time.Duration

	// Timeout bounds the time spent waiting for deployments to complete.
	Timeout time.Duration

	// LogWaitAttempts enables smithy logging of every status query.
	LogWaitAttempts bool

	// Sleep overrides the wait between status queries.
	Sleep func(context.Context, time.Duration) error
}

// Curator runs OpsWorks commands across stacks and waits for them to complete
type Curator struct {
	client  API
	options Options
}

func New(client API, optFns ...func(*Options)) *Curator {
	options := Options{
		PollInterval: DefaultPollDelay,
		Timeout:      DefaultWaitDuration,
	}
	for _, fn := range optFns {
		fn(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Curator{
		client:  client,
		options: options,
	}
}

// Dispatch is the outcome of a successful fan out
type Dispatch struct {
	RunId   string
	Command types.Command

	// DeploymentIds in the order of the target stacks.
	DeploymentIds []string

	// Stacks keyed by the deployment created on them.
	Stacks map[string]types.Stack
}

// BuildDeploymentInput builds the deployment request of command on stack.
// Only the layers attached to stack are targeted.
func BuildDeploymentInput(stack types.Stack, command types.Command) (*opsworks.CreateDeploymentInput, error) {
	layerIds := make([]string, 0, len(stack.Layers))
	for _, layer := range stack.Layers {
		layerIds = append(layerIds, layer.LayerId)
	}

	input := &opsworks.CreateDeploymentInput{
		StackId:  aws.String(stack.StackId),
		LayerIds: layerIds,
		Command: &opsworkstypes.DeploymentCommand{
			Name: opsworkstypes.DeploymentCommandName(command.Name),
		},
	}
	if command.Comment != "" {
		input.Comment = aws.String(command.Comment)
	}

	switch command.Name {
	case CommandNameDeploy:
		var appId string
		for _, app := range stack.Apps {
			if app.Shortname == command.App {
				appId = app.AppId
				break
			}
		}
		if appId == "" {
			return nil, fmt.Errorf("%w %s on stack %s", ErrAppNotFound, command.App, stack.Name)
		}
		input.AppId = aws.String(appId)
	case CommandNameExecuteRecipes:
		input.Command.Args = map[string][]string{
			"recipes": append([]string(nil), command.Recipes...),
		}
	}
	return input, nil
}

// Dispatch creates one deployment of command per stack, concurrently.
// Every request is built before the first one is sent, so a stack without the
// requested app prevents the whole dispatch. Deployments created before a
// failing one are not rolled back.
func (c *Curator) Dispatch(ctx context.Context, stacks []types.Stack, command types.Command) (*Dispatch, error) {
	if len(stacks) == 0 {
		return nil, ErrNoTargets
	}
	if err := validator.ValidateCommand(&command); err != nil {
		return nil, err
	}

	runId := uuid.NewString()
	if command.Comment == "" {
		command.Comment = fmt.Sprintf("opsworks-curator run %s", runId)
	}

	inputs := make([]*opsworks.CreateDeploymentInput, len(stacks))
	for i, stack := range stacks {
		input, err := BuildDeploymentInput(stack, command)
		if err != nil {
			return nil, err
		}
		inputs[i] = input
	}

	logger := c.options.Logger.With(zap.String("command", command.Name), zap.String("run", runId))
	ids := make([]string, len(stacks))
	var g errgroup.Group
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			output, err := c.client.CreateDeployment(ctx, input)
			if err != nil {
				return err
			}
			ids[i] = aws.ToString(output.DeploymentId)
			logger.Debug("created deployment", zap.String("stack", stacks[i].Name), zap.String("deployment", ids[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for i, id := range ids {
			if id != "" {
				logger.Warn("deployment left running", zap.String("stack", stacks[i].Name), zap.String("deployment", id))
			}
		}
		return nil, err
	}

	dispatch := &Dispatch{
		RunId:         runId,
		Command:       command,
		DeploymentIds: ids,
		Stacks:        make(map[string]types.Stack, len(ids)),
	}
	for i, id := range ids {
		dispatch.Stacks[id] = stacks[i]
	}
	logger.Info(fmt.Sprintf("started %d deployments", len(ids)))
	return dispatch, nil
}

// Monitor waits for the deployments of dispatch to complete. A failed batch is
// reported as *DeploymentsFailedError.
func (c *Curator) Monitor(ctx context.Context, dispatch *Dispatch) ([]types.Deployment, error) {
	waiter := NewDeploymentsCompletedWaiter(c.client, func(o *DeploymentsCompletedWaiterOptions) {
		o.Delay = c.options.PollInterval
		o.LogWaitAttempts = c.options.LogWaitAttempts
		if c.options.Sleep != nil {
			o.Sleep = c.options.Sleep
		}
	})

	c.options.Logger.Info("waiting for deployments to complete", zap.Duration("interval", c.options.PollInterval))
	output, err := waiter.WaitForOutput(ctx, &opsworks.DescribeDeploymentsInput{
		DeploymentIds: dispatch.DeploymentIds,
	}, c.options.Timeout)
	if err != nil {
		return nil, err
	}
	return inventory.FromDeployments(output.Deployments), nil
}

// Run dispatches command to stacks, waits for every deployment and aggregates the outcome.
// Failed deployments produce a report with failures and a nil error.
func (c *Curator) Run(ctx context.Context, stacks []types.Stack, command types.Command) (*Report, error) {
	dispatch, err := c.Dispatch(ctx, stacks, command)
	if err != nil {
		return nil, RefineError(err)
	}

	deployments, err := c.Monitor(ctx, dispatch)
	var failed *DeploymentsFailedError
	switch {
	case errors.As(err, &failed):
		report := NewReport(dispatch, failed.Deployments)
		report.Log(c.options.Logger)
		return report, nil
	case err != nil:
		return nil, RefineError(err)
	}

	report := NewReport(dispatch, deployments)
	report.Log(c.options.Logger)
	return report, nil
}
