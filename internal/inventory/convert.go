package inventory

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	opsworkstypes "github.com/aws/aws-sdk-go-v2/service/opsworks/types"

	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

func fromStack(s opsworkstypes.Stack) types.Stack {
	return types.Stack{
		StackId:    aws.ToString(s.StackId),
		Name:       aws.ToString(s.Name),
		Region:     aws.ToString(s.Region),
		CustomJson: aws.ToString(s.CustomJson),
	}
}

func fromLayer(l opsworkstypes.Layer) types.Layer {
	return types.Layer{
		LayerId:    aws.ToString(l.LayerId),
		StackId:    aws.ToString(l.StackId),
		Shortname:  aws.ToString(l.Shortname),
		Name:       aws.ToString(l.Name),
		CustomJson: aws.ToString(l.CustomJson),
	}
}

func fromApp(a opsworkstypes.App) types.App {
	app := types.App{
		AppId:     aws.ToString(a.AppId),
		StackId:   aws.ToString(a.StackId),
		Shortname: aws.ToString(a.Shortname),
		Name:      aws.ToString(a.Name),
	}
	if a.AppSource == nil {
		return app
	}

	// Password and SshKey are never exposed
	source := map[string]string{
		"Type":     string(a.AppSource.Type),
		"Url":      aws.ToString(a.AppSource.Url),
		"Username": aws.ToString(a.AppSource.Username),
		"Revision": aws.ToString(a.AppSource.Revision),
	}
	for k, v := range source {
		if v == "" {
			delete(source, k)
		}
	}
	app.Source = source
	return app
}

func fromInstance(i opsworkstypes.Instance) types.Instance {
	instance := types.Instance{
		InstanceId:       aws.ToString(i.InstanceId),
		Ec2InstanceId:    aws.ToString(i.Ec2InstanceId),
		Hostname:         aws.ToString(i.Hostname),
		Status:           aws.ToString(i.Status),
		InstanceType:     aws.ToString(i.InstanceType),
		PublicIp:         aws.ToString(i.PublicIp),
		PrivateIp:        aws.ToString(i.PrivateIp),
		AvailabilityZone: aws.ToString(i.AvailabilityZone),
	}
	if len(i.LayerIds) > 0 {
		instance.LayerId = i.LayerIds[0]
	}
	return instance
}

func fromDeployment(d opsworkstypes.Deployment) types.Deployment {
	deployment := types.Deployment{
		DeploymentId: aws.ToString(d.DeploymentId),
		StackId:      aws.ToString(d.StackId),
		AppId:        aws.ToString(d.AppId),
		Status:       aws.ToString(d.Status),
		CreatedAt:    aws.ToString(d.CreatedAt),
		CompletedAt:  aws.ToString(d.CompletedAt),
		Duration:     aws.ToInt32(d.Duration),
		IamUserArn:   aws.ToString(d.IamUserArn),
		Comment:      aws.ToString(d.Comment),
		CustomJson:   aws.ToString(d.CustomJson),
	}
	if d.Command != nil {
		deployment.Command = types.DeploymentCommand{
			Name: string(d.Command.Name),
			Args: d.Command.Args,
		}
	}
	return deployment
}

// FromDeployments converts SDK deployment records.
func FromDeployments(deployments []opsworkstypes.Deployment) []types.Deployment {
	out := make([]types.Deployment, 0, len(deployments))
	for _, d := range deployments {
		out = append(out, fromDeployment(d))
	}
	return out
}

func fromLoadBalancer(lb opsworkstypes.ElasticLoadBalancer) types.LoadBalancer {
	return types.LoadBalancer{
		Name:           aws.ToString(lb.ElasticLoadBalancerName),
		Region:         aws.ToString(lb.Region),
		DnsName:        aws.ToString(lb.DnsName),
		LayerId:        aws.ToString(lb.LayerId),
		Ec2InstanceIds: lb.Ec2InstanceIds,
	}
}

func fromInstanceStates(states []elbtypes.InstanceState) map[string]types.InstanceHealth {
	health := make(map[string]types.InstanceHealth, len(states))
	for _, s := range states {
		health[aws.ToString(s.InstanceId)] = types.InstanceHealth{
			State:       aws.ToString(s.State),
			ReasonCode:  aws.ToString(s.ReasonCode),
			Description: aws.ToString(s.Description),
		}
	}
	return health
}
