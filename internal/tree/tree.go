// Package tree turns a flat set of structured object names into a browsable
// parent/child tree.
//
// Each object name is canonicalized into a path by replacing the domain
// separator with the property separator, so "java.lang:type=Memory" becomes
// the path "java.lang,type=Memory". The last segment of a path is its node,
// everything before it is the parent path. Ancestors that are not object
// names themselves are created as synthetic nodes with an empty object name.
//
// Node ids start at 1 and are assigned in first-seen order. Root nodes have
// parent id 0.
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stacklok/mbean-bridge/internal/objectname"
)

// RootParentID is the parent id of root nodes
const RootParentID = 0

// ErrMalformedName is returned for object names that cannot be placed in the tree.
var ErrMalformedName = errors.New("malformed object name")

// Node is one node of the tree
type Node struct {
	ID         int
	ParentID   int
	Name       string
	ObjectName string
}

// Row is the rendered form of a node
type Row struct {
	NodeID     string `json:"nodeId"`
	ParentID   string `json:"parentId"`
	NodeName   string `json:"nodeName"`
	ObjectName string `json:"objectName"`
}

// Builder accumulates object names into a tree. It is not safe for
// concurrent use.
type Builder struct {
	nodes  []Node
	byPath map[string]int
	nextID int
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		byPath: make(map[string]int),
		nextID: 1,
	}
}

// Build adds every name to a new builder and returns its nodes. Malformed
// names are skipped and returned as errors wrapping ErrMalformedName.
func Build(objectNames []string) ([]Node, []error) {
	b := NewBuilder()
	rejected := b.AddAll(objectNames)
	return b.Nodes(), rejected
}

// AddAll adds each name in order. Malformed names are skipped; the remaining
// names are still added.
func (b *Builder) AddAll(objectNames []string) []error {
	var rejected []error
	for _, name := range objectNames {
		if _, err := b.Add(name); err != nil {
			rejected = append(rejected, err)
		}
	}
	return rejected
}

// Add places one object name in the tree and returns its node. Adding a name
// that is already present returns the existing node without consuming an id.
func (b *Builder) Add(objectName string) (Node, error) {
	path := canonicalPath(objectName)
	if err := validatePath(path); err != nil {
		return Node{}, fmt.Errorf("%w %q: %w", ErrMalformedName, objectName, err)
	}

	if idx, ok := b.byPath[path]; ok {
		node := &b.nodes[idx]
		// a synthetic ancestor that turns out to be an object name itself
		if node.ObjectName == "" {
			node.ObjectName = objectName
		}
		return *node, nil
	}

	own, parentPath, hasParent := splitPath(path)
	parentID := RootParentID
	if hasParent {
		parentID = b.ensure(parentPath)
	}
	return b.nodes[b.insert(path, own, parentID, objectName)], nil
}

// Len returns the number of nodes
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Nodes returns the nodes ordered by id
func (b *Builder) Nodes() []Node {
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Rows renders the nodes with decimal string ids
func (b *Builder) Rows() []Row {
	return ToRows(b.Nodes())
}

// ToRows renders nodes with decimal string ids
func ToRows(nodes []Node) []Row {
	rows := make([]Row, len(nodes))
	for i, n := range nodes {
		rows[i] = Row{
			NodeID:     strconv.Itoa(n.ID),
			ParentID:   strconv.Itoa(n.ParentID),
			NodeName:   n.Name,
			ObjectName: n.ObjectName,
		}
	}
	return rows
}

// ensure returns the id of the node at path, creating it and its missing
// ancestors as synthetic nodes
func (b *Builder) ensure(path string) int {
	if idx, ok := b.byPath[path]; ok {
		return b.nodes[idx].ID
	}

	own, parentPath, hasParent := splitPath(path)
	parentID := RootParentID
	if hasParent {
		parentID = b.ensure(parentPath)
	}
	return b.nodes[b.insert(path, own, parentID, "")].ID
}

func (b *Builder) insert(path, segment string, parentID int, objectName string) int {
	b.nodes = append(b.nodes, Node{
		ID:         b.nextID,
		ParentID:   parentID,
		Name:       displayName(segment),
		ObjectName: objectName,
	})
	b.nextID++
	idx := len(b.nodes) - 1
	b.byPath[path] = idx
	return idx
}

func canonicalPath(objectName string) string {
	return strings.ReplaceAll(objectName, objectname.DomainSeparator, objectname.PropertySeparator)
}

func validatePath(path string) error {
	if path == "" {
		return errors.New("empty name")
	}
	for _, segment := range strings.Split(path, objectname.PropertySeparator) {
		if segment == "" {
			return errors.New("empty segment")
		}
	}
	return nil
}

// splitPath splits off the last segment. A path without a separator past its
// first character is a root.
func splitPath(path string) (own, parent string, hasParent bool) {
	idx := strings.LastIndex(path, objectname.PropertySeparator)
	if idx <= 0 {
		return path, "", false
	}
	return path[idx+1:], path[:idx], true
}

// displayName is the text after the last '=', or the whole segment
func displayName(segment string) string {
	return segment[strings.LastIndex(segment, "=")+1:]
}
