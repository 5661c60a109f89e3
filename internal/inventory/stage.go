package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

// MergeConfig overlays the layer custom JSON onto the stack custom JSON.
// Top level layer keys win; an empty document counts as {}.
func MergeConfig(stackDoc, layerDoc string) (map[string]interface{}, error) {
	stackConfig, err := decodeDocument(stackDoc)
	if err != nil {
		return nil, err
	}
	layerConfig, err := decodeDocument(layerDoc)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(stackConfig)+len(layerConfig))
	for k, v := range stackConfig {
		merged[k] = v
	}
	for k, v := range layerConfig {
		merged[k] = v
	}
	return merged, nil
}

func decodeDocument(doc string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if len(bytes.TrimSpace([]byte(doc))) == 0 {
		return out, nil
	}
	decoder := json.NewDecoder(bytes.NewBufferString(doc))
	decoder.UseNumber()
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttachLayers returns a copy of stack owning layers, each with its effective configuration.
func AttachLayers(stack types.Stack, layers []types.Layer) (types.Stack, error) {
	attached := make([]types.Layer, 0, len(layers))
	for _, layer := range layers {
		config, err := MergeConfig(stack.CustomJson, layer.CustomJson)
		if err != nil {
			return types.Stack{}, fmt.Errorf("invalid custom JSON for layer %s on stack %s: %w", layer.Shortname, stack.Name, err)
		}
		layer.StackId = stack.StackId
		layer.Config = config
		attached = append(attached, layer)
	}
	stack.Layers = attached
	return stack, nil
}

// AttachApps returns a copy of stack owning apps.
func AttachApps(stack types.Stack, apps []types.App) types.Stack {
	stack.Apps = append([]types.App(nil), apps...)
	return stack
}

// AttachDeployments returns a copy of stack owning deployments.
func AttachDeployments(stack types.Stack, deployments []types.Deployment) types.Stack {
	stack.Deployments = append([]types.Deployment(nil), deployments...)
	return stack
}

// AttachInstances returns a copy of stack whose layers own the instances registered in them.
// Instances of layers that are not attached are ignored.
func AttachInstances(stack types.Stack, instances []types.Instance) types.Stack {
	layers := make([]types.Layer, len(stack.Layers))
	for i, layer := range stack.Layers {
		layer.Instances = []types.Instance{}
		for _, instance := range instances {
			if instance.LayerId == layer.LayerId {
				layer.Instances = append(layer.Instances, instance)
			}
		}
		layers[i] = layer
	}
	stack.Layers = layers
	return stack
}

// AttachLoadBalancers returns a copy of stack owning the load balancers, each also
// attached to the layer it serves.
func AttachLoadBalancers(stack types.Stack, loadBalancers []types.LoadBalancer) types.Stack {
	stack.LoadBalancers = append([]types.LoadBalancer(nil), loadBalancers...)
	layers := make([]types.Layer, len(stack.Layers))
	for i, layer := range stack.Layers {
		layer.LoadBalancers = []types.LoadBalancer{}
		for _, lb := range loadBalancers {
			if lb.LayerId == layer.LayerId {
				layer.LoadBalancers = append(layer.LoadBalancers, lb)
			}
		}
		layers[i] = layer
	}
	stack.Layers = layers
	return stack
}

// AttachEC2State returns a copy of stack with instance EC2 states set from states,
// keyed by EC2 instance ID.
func AttachEC2State(stack types.Stack, states map[string]string) types.Stack {
	layers := make([]types.Layer, len(stack.Layers))
	for i, layer := range stack.Layers {
		instances := make([]types.Instance, len(layer.Instances))
		for j, instance := range layer.Instances {
			instance.Ec2State = states[instance.Ec2InstanceId]
			instances[j] = instance
		}
		layer.Instances = instances
		layers[i] = layer
	}
	stack.Layers = layers
	return stack
}

// MatchLoadBalancerInstances resolves load balancer members to layer instances with their health.
// Layers without load balancers are dropped.
func MatchLoadBalancerInstances(stacks []types.Stack) []types.Stack {
	out := make([]types.Stack, 0, len(stacks))
	for _, stack := range stacks {
		layers := make([]types.Layer, 0, len(stack.Layers))
		for _, layer := range stack.Layers {
			if len(layer.LoadBalancers) == 0 {
				continue
			}
			loadBalancers := make([]types.LoadBalancer, len(layer.LoadBalancers))
			for i, lb := range layer.LoadBalancers {
				lb.Instances = []types.Instance{}
				for _, id := range lb.Ec2InstanceIds {
					health, ok := lb.Health[id]
					if !ok {
						continue
					}
					for _, instance := range layer.Instances {
						if instance.Ec2InstanceId == id {
							instance.Health = &health
							lb.Instances = append(lb.Instances, instance)
						}
					}
				}
				loadBalancers[i] = lb
			}
			layer.LoadBalancers = loadBalancers
			layers = append(layers, layer)
		}
		stack.Layers = layers
		out = append(out, stack)
	}
	return out
}
