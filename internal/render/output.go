package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/ikorchynskyi/opsworks-curator/internal/curator"
	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

const (
	FormatTree  = "tree"
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatRaw   = "raw"
)

// Formats lists the accepted --output values.
var Formats = []string{FormatTree, FormatTable, FormatYAML, FormatRaw}

// InstancesCSV writes one stack,layer,hostname,status,public ip,private ip record per instance.
func InstancesCSV(w io.Writer, stacks []types.Stack) error {
	writer := csv.NewWriter(w)
	for _, stack := range stacks {
		for _, layer := range stack.Layers {
			for _, instance := range layer.Instances {
				err := writer.Write([]string{
					stack.Name,
					layer.Shortname,
					instance.Hostname,
					instance.Status,
					instance.PublicIp,
					instance.PrivateIp,
				})
				if err != nil {
					return err
				}
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func YAML(w io.Writer, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func Raw(w io.Writer, v interface{}) error {
	_, err := pp.Fprintln(w, v)
	return err
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// DeploymentsTable writes at most limit deployments per stack, one row each.
func DeploymentsTable(w io.Writer, stacks []types.Stack, limit int) {
	table := newTable(w, []string{"Stack", "Created", "Command", "Status", "Duration", "Author", "Comment"})
	for _, stack := range stacks {
		deployments := stack.Deployments
		if len(deployments) > limit {
			deployments = deployments[:limit]
		}
		for _, d := range deployments {
			duration := ""
			if d.Duration > 0 {
				duration = fmt.Sprintf("%ds", d.Duration)
			}
			table.Append([]string{stack.Name, d.CreatedAt, d.Command.Name, d.Status, duration, d.IamUserArn, d.Comment})
		}
	}
	table.Render()
}

// InstancesTable writes one row per instance.
func InstancesTable(w io.Writer, stacks []types.Stack) {
	table := newTable(w, []string{"Stack", "Layer", "Hostname", "Status", "Type", "Address", "EC2"})
	for _, stack := range stacks {
		for _, layer := range stack.Layers {
			for _, i := range layer.Instances {
				address := i.PublicIp
				if address == "" {
					address = i.PrivateIp
				}
				table.Append([]string{stack.Name, layer.Shortname, i.Hostname, i.Status, instanceType(i), address, i.Ec2State})
			}
		}
	}
	table.Render()
}

// ReportTable writes the failed deployments of a run with their console links.
func ReportTable(w io.Writer, report *curator.Report) {
	if !report.Failed() {
		fmt.Fprintln(w, report.Summary())
		return
	}
	table := newTable(w, []string{"Stack", "Region", "Deployment", "Logs"})
	for _, f := range report.Failures {
		table.Append([]string{f.Stack.Name, f.Stack.Region, f.Deployment.DeploymentId, f.URL})
	}
	table.Render()
	fmt.Fprintln(w, report.Summary())
}
