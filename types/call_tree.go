package types

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// CallTraceNode records one executed context and the nested calls it made.
type CallTraceNode struct {
	Parent      *CallTraceNode   `json:"-"`
	Children    []*CallTraceNode `json:"children,omitempty"`
	Address     Address          `json:"address"`
	Sender      Address          `json:"sender"`
	IsStatic    bool             `json:"isStatic"`
	Depth       int              `json:"depth"`
	GasAllotted Gas              `json:"gasAllotted"`
	GasUsed     Gas              `json:"gasUsed"`
	Reverted    bool             `json:"reverted"`
	HaltReason  string           `json:"haltReason,omitempty"`
	OutputLen   int              `json:"outputLen"`
}

// AddChild appends a child node and returns it.
func (node *CallTraceNode) AddChild(child *CallTraceNode) *CallTraceNode {
	child.Parent = node
	child.setDepth(node.Depth + 1)
	node.Children = append(node.Children, child)
	return child
}

func (node *CallTraceNode) setDepth(d int) {
	node.Depth = d
	for _, c := range node.Children {
		c.setDepth(d + 1)
	}
}

func (node *CallTraceNode) label() string {
	kind := "CALL"
	if node.IsStatic {
		kind = "STATICCALL"
	}
	status := "\033[1;32mok\033[0m"
	if node.Reverted {
		status = "\033[1;31mreverted\033[0m"
		if node.HaltReason != "" {
			status += " (" + node.HaltReason + ")"
		}
	}
	return fmt.Sprintf("%s %s gas used %v of %v, output %d words, %s",
		kind, node.Address.String(), node.GasUsed, node.GasAllotted, node.OutputLen, status)
}

func (node *CallTraceNode) fill(tree treeprint.Tree) {
	for _, child := range node.Children {
		child.fill(tree.AddBranch(child.label()))
	}
}

// ToTree renders the subtree rooted at node.
func (node *CallTraceNode) ToTree() treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(node.label())
	node.fill(tree)
	return tree
}

func (node *CallTraceNode) String() string {
	if node == nil {
		return "<empty call trace>"
	}
	return node.ToTree().String()
}

// Count returns the number of contexts in the subtree.
func (node *CallTraceNode) Count() int {
	n := 1
	for _, child := range node.Children {
		n += child.Count()
	}
	return n
}
