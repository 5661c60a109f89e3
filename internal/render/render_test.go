package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

func init() {
	color.NoColor = true
}

func TestNodeString(t *testing.T) {
	tree := Node{Label: "Stacks", Nodes: []Node{
		{Label: "a", Nodes: []Node{{Label: "a1\nline two"}}},
		{Label: "b\nmore", Nodes: []Node{{Label: "b1"}, {Label: "b2"}}},
		{Label: "c"},
	}}

	want := strings.Join([]string{
		"Stacks",
		"├─┬ a",
		"│ └── a1",
		"│     line two",
		"├─┬ b",
		"│ │ more",
		"│ ├── b1",
		"│ └── b2",
		"└── c",
		"",
	}, "\n")
	if got := tree.String(); got != want {
		t.Fatalf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}
}

func inventory() []types.Stack {
	return []types.Stack{{
		StackId: "s-1",
		Name:    "wordpress-production",
		Region:  "us-west-1",
		Apps:    []types.App{{Shortname: "dummyapp1", Source: map[string]string{"Url": "git@example.com:dummy.git", "Type": "git"}}},
		Layers: []types.Layer{{
			Shortname: "webserver",
			Instances: []types.Instance{
				{Hostname: "web1", Status: "online", InstanceType: "c5.large", PublicIp: "1.2.3.4", PrivateIp: "10.0.0.1"},
				{Hostname: "web2", Status: "stopped", PrivateIp: "10.0.0.2"},
			},
			LoadBalancers: []types.LoadBalancer{{
				Name:   "web-elb",
				Region: "us-west-1",
				Instances: []types.Instance{
					{Hostname: "web1", InstanceType: "c5.large", Health: &types.InstanceHealth{State: types.InstanceHealthInService}},
					{Hostname: "web2", Health: &types.InstanceHealth{State: types.InstanceHealthOutOfService, ReasonCode: "Instance", Description: "failed"}},
				},
			}},
		}},
		Deployments: []types.Deployment{
			{DeploymentId: "d-2", CreatedAt: "2024-05-02", Command: types.DeploymentCommand{Name: "execute_recipes", Args: map[string][]string{"recipes": {"r1", "r2"}}}, Status: "failed", Duration: 42},
			{DeploymentId: "d-1", CreatedAt: "2024-05-01", Command: types.DeploymentCommand{Name: "deploy"}, Status: "successful", IamUserArn: "arn:aws:iam::1:user/ops"},
		},
	}}
}

func TestStackTreeInstances(t *testing.T) {
	var buf bytes.Buffer
	if err := Tree(&buf, inventory(), TreeOptions{Layers: true, Instances: true}); err != nil {
		t.Fatalf("tree: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"└─┬ wordpress-production - us-west-1",
		"web1 - c5.large (1.2.3.4)",
		"web2 - stopped - OnPremises (10.0.0.2)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "web-elb") || strings.Contains(out, "dummyapp1") || strings.Contains(out, "d-1") {
		t.Fatalf("unexpected sections in:\n%s", out)
	}
}

func TestStackTreeLoadBalancers(t *testing.T) {
	out := StackTree(inventory(), TreeOptions{Layers: true, LoadBalancers: true}).String()
	for _, want := range []string{
		"web-elb - us-west-1",
		"● web1 - c5.large",
		"● web2 - OutOfService - OnPremises",
		"ReasonCode: Instance,",
		"Description: failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestStackTreeAppsAndDeployments(t *testing.T) {
	out := StackTree(inventory(), TreeOptions{Apps: true, Deployments: 1}).String()
	for _, want := range []string{
		"dummyapp1",
		"Type: git",
		"Url: git@example.com:dummy.git",
		"2024-05-02 - execute_recipes",
		"Logs: https://console.aws.amazon.com/opsworks/home?region=us-west-1#/stack/s-1/deployments/d-2",
		"Author: Automatic AWS Deployment",
		"Duration: 42s",
		"Recipes: r1,r2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2024-05-01") {
		t.Fatalf("expected the deployment limit to apply:\n%s", out)
	}
	if strings.Contains(out, "webserver") {
		t.Fatalf("expected layers to be hidden:\n%s", out)
	}
}

func TestInstancesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := InstancesCSV(&buf, inventory()); err != nil {
		t.Fatalf("csv: %v", err)
	}
	want := "wordpress-production,webserver,web1,online,1.2.3.4,10.0.0.1\n" +
		"wordpress-production,webserver,web2,stopped,,10.0.0.2\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, inventory()); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "name: wordpress-production") || !strings.Contains(out, "hostname: web1") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestDeploymentsTable(t *testing.T) {
	var buf bytes.Buffer
	DeploymentsTable(&buf, inventory(), 5)
	out := buf.String()
	for _, want := range []string{"STACK", "wordpress-production", "execute_recipes", "42s", "arn:aws:iam::1:user/ops"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestReportTable(t *testing.T) {
	stack := types.Stack{StackId: "s-2", Name: "wordpress-staging", Region: "us-west-1"}
	report := curator.NewReport(&curator.Dispatch{Stacks: map[string]types.Stack{"d-2": stack}}, []types.Deployment{
		{DeploymentId: "d-1", Status: types.DeploymentStatusSuccessful},
		{DeploymentId: "d-2", Status: types.DeploymentStatusFailed},
	})

	var buf bytes.Buffer
	ReportTable(&buf, report)
	out := buf.String()
	if !strings.Contains(out, "wordpress-staging") || !strings.Contains(out, "1 of 2 operations failed") {
		t.Fatalf("unexpected report:\n%s", out)
	}

	buf.Reset()
	ReportTable(&buf, curator.NewReport(&curator.Dispatch{}, nil))
	if buf.String() != "done\n" {
		t.Fatalf("unexpected report %q", buf.String())
	}
}
