// Package outcome holds per-record validation outcomes as a tree mirroring
// the shape of the record under validation. Errors and warnings attach to the
// node addressed by a field path; the rendered tree is the interchange
// contract with reporting layers and preserves the record's shape.
package outcome

import (
	"encoding/json"

	"sampleval/pkg/fieldpath"
)

// Node is one location in the outcome tree. A node is either an object
// (Fields), a list (Items) or a leaf; errors and warnings may attach at any
// node. Within one node each message appears at most once per sequence.
type Node struct {
	Errors   []string
	Warnings []string
	Fields   map[string]*Node
	Items    []*Node
}

// New returns an empty leaf node.
func New() *Node { return &Node{} }

// FromRecord builds a skeleton mirroring the record's shape: maps become
// object nodes, lists become list nodes, scalars become leaves.
func FromRecord(record any) *Node {
	node := New()
	switch v := record.(type) {
	case map[string]any:
		node.Fields = make(map[string]*Node, len(v))
		for key, child := range v {
			node.Fields[key] = FromRecord(child)
		}
	case []any:
		node.Items = make([]*Node, len(v))
		for i, child := range v {
			node.Items[i] = FromRecord(child)
		}
	}
	return node
}

// AddError appends msg unless already present.
func (n *Node) AddError(msg string) {
	if msg == "" || contains(n.Errors, msg) {
		return
	}
	n.Errors = append(n.Errors, msg)
}

// AddWarning appends msg unless already present.
func (n *Node) AddWarning(msg string) {
	if msg == "" || contains(n.Warnings, msg) {
		return
	}
	n.Warnings = append(n.Warnings, msg)
}

// Find walks the tree along path. The second return is false when any
// segment is absent.
func (n *Node) Find(path fieldpath.Path) (*Node, bool) {
	current := n
	for _, seg := range path {
		switch {
		case seg.IsIdx:
			if seg.Index >= len(current.Items) {
				return nil, false
			}
			current = current.Items[seg.Index]
		default:
			child, ok := current.Fields[seg.Name]
			if !ok {
				return nil, false
			}
			current = child
		}
	}
	return current, true
}

// Ensure walks the tree along path, creating object and list nodes as needed,
// and returns the node at the path's end.
func (n *Node) Ensure(path fieldpath.Path) *Node {
	current := n
	for _, seg := range path {
		if seg.IsIdx {
			for len(current.Items) <= seg.Index {
				current.Items = append(current.Items, New())
			}
			current = current.Items[seg.Index]
			continue
		}
		if current.Fields == nil {
			current.Fields = make(map[string]*Node)
		}
		child, ok := current.Fields[seg.Name]
		if !ok {
			child = New()
			current.Fields[seg.Name] = child
		}
		current = child
	}
	return current
}

// AttachError routes msg to the node at path. Messages addressed to a list
// node fan out to every item; unresolvable paths are dropped silently and the
// return reports whether the message landed.
func (n *Node) AttachError(path fieldpath.Path, msg string) bool {
	return n.attach(path, msg, (*Node).AddError)
}

// AttachWarning routes msg to the node at path with AttachError's semantics.
func (n *Node) AttachWarning(path fieldpath.Path, msg string) bool {
	return n.attach(path, msg, (*Node).AddWarning)
}

func (n *Node) attach(path fieldpath.Path, msg string, add func(*Node, string)) bool {
	target, ok := n.Find(path)
	if !ok {
		return false
	}
	if len(target.Items) > 0 {
		for _, item := range target.Items {
			add(item, msg)
		}
		return true
	}
	add(target, msg)
	return true
}

// Merge unions the other tree into this one, deduplicating messages and
// extending list nodes as required.
func (n *Node) Merge(other *Node) {
	if other == nil {
		return
	}
	for _, msg := range other.Errors {
		n.AddError(msg)
	}
	for _, msg := range other.Warnings {
		n.AddWarning(msg)
	}
	for name, child := range other.Fields {
		if n.Fields == nil {
			n.Fields = make(map[string]*Node)
		}
		if existing, ok := n.Fields[name]; ok {
			existing.Merge(child)
		} else {
			n.Fields[name] = child
		}
	}
	for i, item := range other.Items {
		if i < len(n.Items) {
			n.Items[i].Merge(item)
		} else {
			n.Items = append(n.Items, item)
		}
	}
}

// HasErrors reports whether any node in the tree carries an error.
func (n *Node) HasErrors() bool {
	if len(n.Errors) > 0 {
		return true
	}
	for _, child := range n.Fields {
		if child.HasErrors() {
			return true
		}
	}
	for _, item := range n.Items {
		if item.HasErrors() {
			return true
		}
	}
	return false
}

// MarshalJSON renders list nodes as arrays and object nodes as objects with
// errors/warnings arrays injected alongside the record's own keys. A list node
// carrying messages of its own renders as an object so the messages survive.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Items != nil {
		if len(n.Errors) == 0 && len(n.Warnings) == 0 {
			return json.Marshal(n.Items)
		}
		doc := map[string]any{"items": n.Items}
		if len(n.Errors) > 0 {
			doc["errors"] = n.Errors
		}
		if len(n.Warnings) > 0 {
			doc["warnings"] = n.Warnings
		}
		return json.Marshal(doc)
	}
	doc := make(map[string]any, len(n.Fields)+2)
	for name, child := range n.Fields {
		doc[name] = child
	}
	if len(n.Errors) > 0 {
		doc["errors"] = n.Errors
	}
	if len(n.Warnings) > 0 {
		doc["warnings"] = n.Warnings
	}
	return json.Marshal(doc)
}

func contains(list []string, msg string) bool {
	for _, have := range list {
		if have == msg {
			return true
		}
	}
	return false
}
