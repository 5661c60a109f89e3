package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/opsworks"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

// OpsWorksAPI is the part of the OpsWorks client the inventory reads from.
type OpsWorksAPI interface {
	DescribeStacks(ctx context.Context, params *opsworks.DescribeStacksInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeStacksOutput, error)
	DescribeLayers(ctx context.Context, params *opsworks.DescribeLayersInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeLayersOutput, error)
	DescribeApps(ctx context.Context, params *opsworks.DescribeAppsInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeAppsOutput, error)
	DescribeInstances(ctx context.Context, params *opsworks.DescribeInstancesInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeInstancesOutput, error)
	DescribeDeployments(ctx context.Context, params *opsworks.DescribeDeploymentsInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeDeploymentsOutput, error)
	DescribeElasticLoadBalancers(ctx context.Context, params *opsworks.DescribeElasticLoadBalancersInput, optFns ...func(*opsworks.Options)) (*opsworks.DescribeElasticLoadBalancersOutput, error)
}

// LoadBalancingAPI reports classic load balancer instance health.
type LoadBalancingAPI interface {
	DescribeInstanceHealth(ctx context.Context, params *elasticloadbalancing.DescribeInstanceHealthInput, optFns ...func(*elasticloadbalancing.Options)) (*elasticloadbalancing.DescribeInstanceHealthOutput, error)
}

// ClientOptions are options for Client
type ClientOptions struct {
	// LoadBalancing returns a load balancing client for a region. Required by FetchLoadBalancers.
	LoadBalancing func(region string) LoadBalancingAPI

	// EC2 returns an EC2 client for a region. Required by FetchEC2State.
	EC2 func(region string) ec2.DescribeInstancesAPIClient

	Logger *zap.Logger
}

// Client builds the inventory. Every Fetch method returns new stacks and leaves its input untouched.
type Client struct {
	api     OpsWorksAPI
	options ClientOptions
}

func NewClient(api OpsWorksAPI, optFns ...func(*ClientOptions)) *Client {
	options := ClientOptions{}
	for _, fn := range optFns {
		fn(&options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Client{
		api:     api,
		options: options,
	}
}

func (c *Client) ListStacks(ctx context.Context) ([]types.Stack, error) {
	output, err := c.api.DescribeStacks(ctx, &opsworks.DescribeStacksInput{})
	if err != nil {
		return nil, err
	}

	stacks := make([]types.Stack, 0, len(output.Stacks))
	for _, s := range output.Stacks {
		stacks = append(stacks, fromStack(s))
	}
	c.options.Logger.Debug("listed stacks", zap.Int("count", len(stacks)))
	return stacks, nil
}

func (c *Client) FindStackByName(ctx context.Context, name string) (types.Stack, error) {
	stacks, err := c.ListStacks(ctx)
	if err != nil {
		return types.Stack{}, err
	}
	for _, s := range stacks {
		if s.Name == name {
			return s, nil
		}
	}
	return types.Stack{}, fmt.Errorf("cannot find stack %s", name)
}

func (c *Client) FetchLayers(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		c.debug("fetching layers", stack)
		output, err := c.api.DescribeLayers(ctx, &opsworks.DescribeLayersInput{
			StackId: aws.String(stack.StackId),
		})
		if err != nil {
			return types.Stack{}, err
		}

		layers := make([]types.Layer, 0, len(output.Layers))
		for _, l := range output.Layers {
			layers = append(layers, fromLayer(l))
		}
		return AttachLayers(stack, layers)
	})
}

func (c *Client) FetchApps(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		c.debug("fetching apps", stack)
		output, err := c.api.DescribeApps(ctx, &opsworks.DescribeAppsInput{
			StackId: aws.String(stack.StackId),
		})
		if err != nil {
			return types.Stack{}, err
		}

		apps := make([]types.App, 0, len(output.Apps))
		for _, a := range output.Apps {
			apps = append(apps, fromApp(a))
		}
		return AttachApps(stack, apps), nil
	})
}

func (c *Client) FetchInstances(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		c.debug("fetching instances", stack)
		output, err := c.api.DescribeInstances(ctx, &opsworks.DescribeInstancesInput{
			StackId: aws.String(stack.StackId),
		})
		if err != nil {
			return types.Stack{}, err
		}

		instances := make([]types.Instance, 0, len(output.Instances))
		for _, i := range output.Instances {
			instances = append(instances, fromInstance(i))
		}
		c.options.Logger.Debug("found instances", zap.String("stack", stack.Name), zap.Int("count", len(instances)))
		return AttachInstances(stack, instances), nil
	})
}

func (c *Client) FetchDeployments(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		c.debug("fetching deployments", stack)
		output, err := c.api.DescribeDeployments(ctx, &opsworks.DescribeDeploymentsInput{
			StackId: aws.String(stack.StackId),
		})
		if err != nil {
			return types.Stack{}, err
		}
		return AttachDeployments(stack, FromDeployments(output.Deployments)), nil
	})
}

// FetchLoadBalancers attaches the stack load balancers together with their instance health.
// Health is fetched concurrently for every load balancer.
func (c *Client) FetchLoadBalancers(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	if c.options.LoadBalancing == nil {
		return nil, errors.New("load balancing client is not configured")
	}

	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		c.debug("fetching load balancers", stack)
		output, err := c.api.DescribeElasticLoadBalancers(ctx, &opsworks.DescribeElasticLoadBalancersInput{
			StackId: aws.String(stack.StackId),
		})
		if err != nil {
			return types.Stack{}, err
		}

		loadBalancers := make([]types.LoadBalancer, len(output.ElasticLoadBalancers))
		g, ctx := errgroup.WithContext(ctx)
		for i, elb := range output.ElasticLoadBalancers {
			i, elb := i, elb
			g.Go(func() error {
				lb := fromLoadBalancer(elb)
				health, err := c.options.LoadBalancing(lb.Region).DescribeInstanceHealth(ctx, &elasticloadbalancing.DescribeInstanceHealthInput{
					LoadBalancerName: aws.String(lb.Name),
				})
				if err != nil {
					return fmt.Errorf("describe instance health of %s: %w", lb.Name, err)
				}
				lb.Health = fromInstanceStates(health.InstanceStates)
				loadBalancers[i] = lb
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return types.Stack{}, err
		}
		return AttachLoadBalancers(stack, loadBalancers), nil
	})
}

// FetchEC2State annotates instances with their EC2 state, queried in the stack region.
func (c *Client) FetchEC2State(ctx context.Context, stacks []types.Stack) ([]types.Stack, error) {
	if c.options.EC2 == nil {
		return nil, errors.New("EC2 client is not configured")
	}

	return c.eachStack(ctx, stacks, func(ctx context.Context, stack types.Stack) (types.Stack, error) {
		var ids []string
		for _, layer := range stack.Layers {
			for _, i := range layer.Instances {
				if i.Ec2InstanceId != "" {
					ids = append(ids, i.Ec2InstanceId)
				}
			}
		}
		if len(ids) == 0 {
			return stack, nil
		}

		c.debug("fetching EC2 state", stack)
		states := make(map[string]string, len(ids))
		paginator := ec2.NewDescribeInstancesPaginator(c.options.EC2(stack.Region), &ec2.DescribeInstancesInput{
			InstanceIds: ids,
		})
		for paginator.HasMorePages() {
			output, err := paginator.NextPage(ctx)
			if err != nil {
				return types.Stack{}, err
			}
			for _, r := range output.Reservations {
				for _, i := range r.Instances {
					if i.State != nil {
						states[aws.ToString(i.InstanceId)] = string(i.State.Name)
					}
				}
			}
		}
		return AttachEC2State(stack, states), nil
	})
}

// eachStack runs fn for every stack concurrently and joins the results in input order.
// The first error cancels the remaining calls.
func (c *Client) eachStack(ctx context.Context, stacks []types.Stack, fn func(context.Context, types.Stack) (types.Stack, error)) ([]types.Stack, error) {
	out := make([]types.Stack, len(stacks))
	g, ctx := errgroup.WithContext(ctx)
	for i := range stacks {
		i := i
		g.Go(func() error {
			stack, err := fn(ctx, stacks[i])
			if err != nil {
				return err
			}
			out[i] = stack
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) debug(msg string, stack types.Stack) {
	c.options.Logger.Debug(msg, zap.String("stack", stack.Name), zap.String("stackId", stack.StackId))
}
