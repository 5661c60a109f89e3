package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

var (
	stackLabel   = color.New(color.FgGreen, color.Bold, color.Underline).SprintFunc()
	appLabel     = color.New(color.FgGreen).SprintFunc()
	elbLabel     = color.New(color.FgMagenta).SprintFunc()
	logsLabel    = color.New(color.FgRed, color.Bold).SprintFunc()
	italic       = color.New(color.Italic).SprintFunc()
	bold         = color.New(color.Bold).SprintFunc()
	statusOK     = color.New(color.FgGreen).SprintFunc()
	statusFailed = color.New(color.FgRed).SprintFunc()
	statusBusy   = color.New(color.FgBlue).SprintFunc()
	statusGone   = color.New(color.FgHiBlack).SprintFunc()
	statusPlain  = fmt.Sprint
)

var instanceStatus = map[string]func(a ...interface{}) string{
	"booting":         statusBusy,
	"connection_lost": statusFailed,
	"online":          statusOK,
	"pending":         statusBusy,
	"rebooting":       statusBusy,
	"requested":       statusBusy,
	"running_setup":   statusBusy,
	"setup_failed":    statusFailed,
	"shutting_down":   statusFailed,
	"start_failed":    statusFailed,
	"stop_failed":     statusFailed,
	"stopped":         statusPlain,
	"stopping":        statusBusy,
	"terminated":      statusGone,
	"terminating":     statusBusy,
}

// TreeOptions selects the parts of the inventory drawn under each stack
type TreeOptions struct {
	Apps          bool
	Layers        bool
	Instances     bool
	LoadBalancers bool

	// Deployments is the number of most recent deployments drawn per stack.
	Deployments int
}

// Tree writes the stacks as a hierarchy rooted at "Stacks".
func Tree(w io.Writer, stacks []types.Stack, opts TreeOptions) error {
	_, err := StackTree(stacks, opts).WriteTo(w)
	return err
}

func StackTree(stacks []types.Stack, opts TreeOptions) Node {
	root := Node{Label: "Stacks"}
	for _, stack := range stacks {
		node := Node{Label: fmt.Sprintf("%s - %s", stackLabel(stack.Name), stack.Region)}

		if opts.Apps {
			for _, app := range stack.Apps {
				node.Nodes = append(node.Nodes, Node{Label: appNodeLabel(app)})
			}
		}

		if opts.Layers {
			for _, layer := range stack.Layers {
				layerNode := Node{Label: layer.Shortname}
				if opts.Instances {
					for _, instance := range layer.Instances {
						layerNode.Nodes = append(layerNode.Nodes, Node{Label: instanceLabel(instance)})
					}
				}
				if opts.LoadBalancers {
					for _, lb := range layer.LoadBalancers {
						lbNode := Node{Label: fmt.Sprintf("%s - %s", elbLabel(lb.Name), lb.Region)}
						for _, instance := range lb.Instances {
							lbNode.Nodes = append(lbNode.Nodes, Node{Label: memberLabel(instance)})
						}
						layerNode.Nodes = append(layerNode.Nodes, lbNode)
					}
				}
				node.Nodes = append(node.Nodes, layerNode)
			}
		}

		deployments := stack.Deployments
		if len(deployments) > opts.Deployments {
			deployments = deployments[:opts.Deployments]
		}
		for _, deployment := range deployments {
			node.Nodes = append(node.Nodes, Node{Label: deploymentLabel(stack, deployment)})
		}

		root.Nodes = append(root.Nodes, node)
	}
	return root
}

func appNodeLabel(app types.App) string {
	keys := make([]string, 0, len(app.Source))
	for k := range app.Source {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{appLabel(app.Shortname)}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, app.Source[k]))
	}
	return strings.Join(lines, "\n")
}

func instanceType(instance types.Instance) string {
	if instance.InstanceType == "" {
		return "OnPremises"
	}
	return instance.InstanceType
}

func instanceAddress(instance types.Instance) string {
	switch {
	case instance.PublicIp != "":
		return fmt.Sprintf(" (%s)", instance.PublicIp)
	case instance.PrivateIp != "":
		return fmt.Sprintf(" (%s)", instance.PrivateIp)
	}
	return ""
}

func instanceLabel(instance types.Instance) string {
	paint, ok := instanceStatus[instance.Status]
	if !ok {
		paint = statusPlain
	}

	label := paint(instance.Hostname)
	if instance.Status != "online" {
		label += " - " + paint(instance.Status)
	}
	label += " - " + instanceType(instance) + instanceAddress(instance)
	if instance.Ec2State != "" {
		label += fmt.Sprintf(" [ec2: %s]", instance.Ec2State)
	}
	return label
}

func memberLabel(instance types.Instance) string {
	if instance.Health != nil && instance.Health.InService() {
		return statusOK("●") + " " + statusOK(instance.Hostname) + " - " + instanceType(instance) + instanceAddress(instance)
	}

	label := statusFailed("●") + " " + statusFailed(instance.Hostname+" - OutOfService") + " - " + instanceType(instance) + instanceAddress(instance)
	if instance.Health != nil {
		label += "\n" + statusFailed(fmt.Sprintf("ReasonCode: %s,", instance.Health.ReasonCode))
		label += "\n" + statusFailed(fmt.Sprintf("Description: %s", instance.Health.Description))
	}
	return label
}

func deploymentLabel(stack types.Stack, deployment types.Deployment) string {
	head := fmt.Sprintf("%s - %s", deployment.CreatedAt, bold(deployment.Command.Name))
	switch deployment.Status {
	case types.DeploymentStatusRunning:
		head = statusBusy(head)
	case types.DeploymentStatusFailed:
		head = statusFailed(head)
	case types.DeploymentStatusSuccessful:
		head = statusOK(head)
	}

	lines := []string{head}
	if deployment.Status == types.DeploymentStatusFailed {
		lines = append(lines, logsLabel("Logs: ")+curator.ConsoleURL(stack.Region, stack.StackId, deployment.DeploymentId))
	}
	if deployment.IamUserArn != "" {
		lines = append(lines, "Author: "+italic(deployment.IamUserArn))
	} else {
		lines = append(lines, "Author: "+italic("Automatic AWS Deployment"))
	}
	lines = append(lines, "Status: "+deployment.Status)
	if deployment.Duration > 0 {
		lines = append(lines, fmt.Sprintf("Duration: %ds", deployment.Duration))
	}
	if recipes, ok := deployment.Command.Args["recipes"]; ok {
		lines = append(lines, "Recipes: "+strings.Join(recipes, ","))
	}
	if deployment.Comment != "" {
		lines = append(lines, "Comment: "+italic(deployment.Comment))
	}
	if deployment.CustomJson != "" {
		lines = append(lines, "JSON: "+italic(deployment.CustomJson))
	}
	return strings.Join(lines, "\n")
}
