package render

import (
	"io"
	"strings"
)

// Node of a printable tree. Labels may span several lines.
type Node struct {
	Label string
	Nodes []Node
}

// String draws the tree with box drawing branches, children indented under their parent.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b, "", "")
	return b.String()
}

func (n Node) WriteTo(w io.Writer) (int64, error) {
	written, err := io.WriteString(w, n.String())
	return int64(written), err
}

func (n Node) write(b *strings.Builder, prefix, lead string) {
	splitter := "\n" + prefix + " " + " "
	if len(n.Nodes) > 0 {
		splitter = "\n" + prefix + "│" + " "
	}
	b.WriteString(lead)
	b.WriteString(strings.Join(strings.Split(n.Label, "\n"), splitter))
	b.WriteString("\n")

	for i, child := range n.Nodes {
		last := i == len(n.Nodes)-1

		branch, childPrefix := "├─", prefix+"│ "
		if last {
			branch, childPrefix = "└─", prefix+"  "
		}
		if len(child.Nodes) > 0 {
			branch += "┬"
		} else {
			branch += "─"
		}
		child.write(b, childPrefix, prefix+branch+" ")
	}
}
