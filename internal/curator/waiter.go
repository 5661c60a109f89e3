package curator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/opsworks"
	"github.com/aws/smithy-go/middleware"
	smithytime "github.com/aws/smithy-go/time"
	smithywaiter "github.com/aws/smithy-go/waiter"
	"github.com/jmespath/go-jmespath"

	"github.com/ikorchynskyi/opsworks-curator/internal/inventory"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

const (
	DefaultPollDelay    time.Duration = 10 * time.Second
	DefaultWaitDuration time.Duration = time.Hour
)

var ErrMaxWaitExceeded = errors.New("exceeded max wait time for DeploymentsCompleted waiter")

// DeploymentsFailedError is returned once no deployment is running anymore
// and at least one of them did not succeed. It carries every deployment record.
type DeploymentsFailedError struct {
	Deployments []types.Deployment
}

func (e *DeploymentsFailedError) Error() string {
	var failed []string
	for _, d := range e.Deployments {
		if d.Status != types.DeploymentStatusSuccessful {
			failed = append(failed, d.DeploymentId)
		}
	}
	return fmt.Sprintf("deployments did not succeed: %s", strings.Join(failed, ", "))
}

// DescribeDeploymentsAPIClient is a client that implements the DescribeDeployments operation.
type DescribeDeploymentsAPIClient interface {
	DescribeDeployments(context.Context, *opsworks.DescribeDeploymentsInput, ...func(*opsworks.Options)) (*opsworks.DescribeDeploymentsOutput, error)
}

// DeploymentsCompletedWaiterOptions are waiter options for DeploymentsCompletedWaiter
type DeploymentsCompletedWaiterOptions struct {

	// Set of options to modify how an operation is invoked. These apply to all
	// operations invoked for this client. Use functional options on operation call to
	// modify this list for per operation behavior.
	APIOptions []func(*middleware.Stack) error

	// Delay is the fixed amount of time to wait between the end of a query and the
	// start of the next one. If unset, DeploymentsCompletedWaiter will use a default
	// delay of 10 seconds.
	Delay time.Duration

	// LogWaitAttempts is used to enable logging for waiter retry attempts
	LogWaitAttempts bool

	// Retryable is function that can be used to override the waiter behavior based
	// on operation output, or returned error. The function returns an error in case
	// of a failure state. In case of retry state, this function returns a bool value
	// of true and nil error, while in case of success it returns a bool value of
	// false and nil error.
	Retryable func(context.Context, *opsworks.DescribeDeploymentsInput, *opsworks.DescribeDeploymentsOutput, error) (bool, error)

	// Sleep waits between attempts. Defaults to smithytime.SleepWithContext.
	Sleep func(context.Context, time.Duration) error
}

// DeploymentsCompletedWaiter waits until every deployment of a batch left the running state
type DeploymentsCompletedWaiter struct {
	client DescribeDeploymentsAPIClient

	options DeploymentsCompletedWaiterOptions
}

// NewDeploymentsCompletedWaiter constructs a DeploymentsCompletedWaiter.
func NewDeploymentsCompletedWaiter(client DescribeDeploymentsAPIClient, optFns ...func(*DeploymentsCompletedWaiterOptions)) *DeploymentsCompletedWaiter {
	options := DeploymentsCompletedWaiterOptions{}
	options.Delay = DefaultPollDelay
	options.Retryable = deploymentsCompletedRetryable
	options.Sleep = smithytime.SleepWithContext

	for _, fn := range optFns {
		fn(&options)
	}
	return &DeploymentsCompletedWaiter{
		client:  client,
		options: options,
	}
}

// Wait calls the waiter function for DeploymentsCompleted waiter. The maxWaitDur is the
// maximum wait duration the waiter will wait. The maxWaitDur is required and must
// be greater than zero.
func (w *DeploymentsCompletedWaiter) Wait(ctx context.Context, params *opsworks.DescribeDeploymentsInput, maxWaitDur time.Duration, optFns ...func(*DeploymentsCompletedWaiterOptions)) error {
	_, err := w.WaitForOutput(ctx, params, maxWaitDur, optFns...)
	return err
}

// WaitForOutput calls the waiter function for DeploymentsCompleted waiter and returns
// the output of the successful operation. All deployment ids of params are queried
// in a single request per attempt. A failed query aborts the wait with its error.
func (w *DeploymentsCompletedWaiter) WaitForOutput(ctx context.Context, params *opsworks.DescribeDeploymentsInput, maxWaitDur time.Duration, optFns ...func(*DeploymentsCompletedWaiterOptions)) (*opsworks.DescribeDeploymentsOutput, error) {
	if maxWaitDur <= 0 {
		return nil, fmt.Errorf("maximum wait time for waiter must be greater than zero")
	}

	options := w.options
	for _, fn := range optFns {
		fn(&options)
	}

	if options.Delay <= 0 {
		options.Delay = DefaultPollDelay
	}
	if options.Sleep == nil {
		options.Sleep = smithytime.SleepWithContext
	}

	ctx, cancelFn := context.WithTimeout(ctx, maxWaitDur)
	defer cancelFn()

	logger := smithywaiter.Logger{}
	remainingTime := maxWaitDur

	var attempt int64
	for {

		attempt++
		apiOptions := options.APIOptions
		start := time.Now()

		if options.LogWaitAttempts {
			logger.Attempt = attempt
			apiOptions = append([]func(*middleware.Stack) error{}, options.APIOptions...)
			apiOptions = append(apiOptions, logger.AddLogger)
		}

		out, err := w.client.DescribeDeployments(ctx, params, func(o *opsworks.Options) {
			o.APIOptions = append(o.APIOptions, apiOptions...)
		})

		retryable, err := options.Retryable(ctx, params, out, err)
		if err != nil {
			return nil, err
		}
		if !retryable {
			return out, nil
		}

		remainingTime -= time.Since(start)
		if remainingTime < options.Delay || remainingTime <= 0 {
			break
		}

		remainingTime -= options.Delay
		if err := options.Sleep(ctx, options.Delay); err != nil {
			return nil, fmt.Errorf("request cancelled while waiting, %w", err)
		}
	}
	return nil, ErrMaxWaitExceeded
}

func deploymentsCompletedRetryable(ctx context.Context, input *opsworks.DescribeDeploymentsInput, output *opsworks.DescribeDeploymentsOutput, err error) (bool, error) {
	if err != nil {
		return false, err
	}

	pathValue, err := jmespath.Search("Deployments[].Status", output)
	if err != nil {
		return false, fmt.Errorf("error evaluating waiter state: %w", err)
	}

	listOfValues, ok := pathValue.([]interface{})
	if !ok {
		return false, fmt.Errorf("waiter comparator expected list got %T", pathValue)
	}
	if len(listOfValues) == 0 {
		return false, fmt.Errorf("no deployments to wait for")
	}

	successful, running := true, false
	for _, v := range listOfValues {
		value, ok := v.(*string)
		if !ok {
			return false, fmt.Errorf("waiter comparator expected string value, got %T", v)
		}

		var status string
		if value != nil {
			status = *value
		}
		if status != types.DeploymentStatusSuccessful {
			successful = false
		}
		if status == types.DeploymentStatusRunning {
			running = true
		}
	}

	if successful {
		return false, nil
	}
	if !running {
		return false, &DeploymentsFailedError{Deployments: inventory.FromDeployments(output.Deployments)}
	}
	return true, nil
}
