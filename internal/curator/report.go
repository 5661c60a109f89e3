package curator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var ErrNoRunningInstance = errors.New("no running instance matches your filters")

const noInstanceMessage = "at least an instance ID"

// Failure is a deployment that did not succeed, with the stack it ran on
type Failure struct {
	Stack      types.Stack
	Deployment types.Deployment
	URL        string
}

// Report is the aggregated outcome of a run
type Report struct {
	RunId       string
	Command     types.Command
	Deployments []types.Deployment
	Failures    []Failure
}

// ConsoleURL links to the deployment log in the OpsWorks console.
func ConsoleURL(region, stackId, deploymentId string) string {
	return fmt.Sprintf("https://console.aws.amazon.com/opsworks/home?region=%s#/stack/%s/deployments/%s", region, stackId, deploymentId)
}

// NewReport resolves every failed deployment to the stack it was dispatched to.
func NewReport(dispatch *Dispatch, deployments []types.Deployment) *Report {
	report := &Report{
		RunId:       dispatch.RunId,
		Command:     dispatch.Command,
		Deployments: deployments,
	}
	for _, d := range deployments {
		if d.Status != types.DeploymentStatusFailed {
			continue
		}
		stack, ok := dispatch.Stacks[d.DeploymentId]
		if !ok {
			stack = types.Stack{StackId: d.StackId}
		}
		report.Failures = append(report.Failures, Failure{
			Stack:      stack,
			Deployment: d,
			URL:        ConsoleURL(stack.Region, stack.StackId, d.DeploymentId),
		})
	}
	return report
}

func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

func (r *Report) Summary() string {
	if !r.Failed() {
		return "done"
	}
	return fmt.Sprintf("%d of %d operations failed", len(r.Failures), len(r.Deployments))
}

func (r *Report) Log(logger *zap.Logger) {
	if !r.Failed() {
		logger.Info(r.Summary(), zap.String("run", r.RunId))
		return
	}
	for _, f := range r.Failures {
		logger.Error(
			fmt.Sprintf("deployment failed on stack %s", f.Stack.Name),
			zap.String("deployment", f.Deployment.DeploymentId),
			zap.String("logs", f.URL),
		)
	}
	logger.Error(r.Summary(), zap.String("run", r.RunId))
}

// RefineError maps the service rejection of a deployment without any target
// instance to ErrNoRunningInstance. Other errors are returned unchanged.
func RefineError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.ErrorMessage(), noInstanceMessage) {
		return ErrNoRunningInstance
	}
	if strings.Contains(err.Error(), noInstanceMessage) {
		return ErrNoRunningInstance
	}
	return err
}
