package dag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrNodeNotFound  = errors.New("node does not exist")
	ErrDuplicateNode = errors.New("node already exists")
	ErrCycle         = errors.New("edge would create a cycle")
)

// Graph is a directed acyclic graph of string-identified nodes carrying a
// value of type T.
type Graph[T any] struct {
	Nodes []*Node[T]
	Edges []*Edge[T]
}

type Node[T any] struct {
	ID    string
	Value T
}

type Edge[T any] struct {
	Left  *Node[T]
	Right *Node[T]
}

func New[T any]() *Graph[T] {
	return &Graph[T]{
		Nodes: []*Node[T]{},
		Edges: []*Edge[T]{},
	}
}

func (g *Graph[T]) AddNode(id string, value T) (*Node[T], error) {
	if g.Find(id) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	node := &Node[T]{ID: id, Value: value}
	g.Nodes = append(g.Nodes, node)
	return node, nil
}

// AddEdge adds an edge from the node "from" to every node in "to". Nothing is
// added when any target is unknown or would close a cycle.
func (g *Graph[T]) AddEdge(from string, to ...string) ([]*Edge[T], error) {
	var edges []*Edge[T]
	fromNode := g.Find(from)
	if fromNode == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}

	for _, targetID := range to {
		targetNode := g.Find(targetID)
		if targetNode == nil {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, targetID)
		}

		if g.createsCycle(fromNode, targetNode) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, from, targetID)
		}

		edges = append(edges, &Edge[T]{
			Left:  fromNode,
			Right: targetNode,
		})
	}
	g.Edges = append(g.Edges, edges...)
	return edges, nil
}

func (g *Graph[T]) Find(id string) *Node[T] {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// Parents returns the IDs of the nodes id directly depends on.
func (g *Graph[T]) Parents(id string) []string {
	var parents []string
	for _, edge := range g.Edges {
		if edge.Right.ID == id {
			parents = append(parents, edge.Left.ID)
		}
	}
	return parents
}

// Ancestors returns the set of nodes id depends on, id included.
func (g *Graph[T]) Ancestors(id string) (map[string]bool, error) {
	if g.Find(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	collected := make(map[string]bool)
	g.collectDependencies(id, collected)
	return collected, nil
}

// collectDependencies recursively collects all dependencies for a given node.
func (g *Graph[T]) collectDependencies(nodeID string, collected map[string]bool) {
	collected[nodeID] = true

	// Edges where this node is on the right are its dependencies.
	for _, edge := range g.Edges {
		if edge.Right.ID == nodeID && !collected[edge.Left.ID] {
			g.collectDependencies(edge.Left.ID, collected)
		}
	}
}

// Levels returns the nodes in topological order, batched so that every node of
// a batch only depends on nodes of earlier batches. When include is non-nil
// only the nodes it marks are considered. Nodes keep their insertion order
// inside a batch.
func (g *Graph[T]) Levels(include map[string]bool) ([][]*Node[T], error) {
	inDegree := make(map[string]int)
	outEdges := make(map[string][]*Node[T])

	wanted := func(id string) bool {
		return include == nil || include[id]
	}

	for _, node := range g.Nodes {
		if wanted(node.ID) {
			inDegree[node.ID] = 0
		}
	}

	for _, edge := range g.Edges {
		if wanted(edge.Left.ID) && wanted(edge.Right.ID) {
			inDegree[edge.Right.ID]++
			outEdges[edge.Left.ID] = append(outEdges[edge.Left.ID], edge.Right)
		}
	}

	var levels [][]*Node[T]
	completed := make(map[string]bool)
	for len(completed) < len(inDegree) {
		var available []*Node[T]
		for _, node := range g.Nodes {
			if wanted(node.ID) && !completed[node.ID] && inDegree[node.ID] == 0 {
				available = append(available, node)
			}
		}

		// Nothing runnable while nodes remain means a cycle.
		if len(available) == 0 {
			var remaining []string
			for _, node := range g.Nodes {
				if wanted(node.ID) && !completed[node.ID] {
					remaining = append(remaining, node.ID)
				}
			}
			return nil, fmt.Errorf("%w: remaining nodes %v", ErrCycle, remaining)
		}

		for _, node := range available {
			completed[node.ID] = true
			for _, dependent := range outEdges[node.ID] {
				inDegree[dependent.ID]--
			}
		}
		levels = append(levels, available)
	}
	return levels, nil
}

func (g *Graph[T]) createsCycle(from, to *Node[T]) bool {
	visited := make(map[string]bool)
	return g.detectCycle(to, from, visited)
}

// detectCycle reports whether target is reachable from start.
func (g *Graph[T]) detectCycle(start, target *Node[T], visited map[string]bool) bool {
	if start == nil || target == nil {
		return false
	}
	if start.ID == target.ID {
		return true
	}
	visited[start.ID] = true
	for _, edge := range g.Edges {
		if edge.Left.ID == start.ID && !visited[edge.Right.ID] {
			if g.detectCycle(edge.Right, target, visited) {
				return true
			}
		}
	}
	return false
}

// WriteD2 writes the edges of the graph in D2 notation.
func (g *Graph[T]) WriteD2(w io.Writer) error {
	var builder strings.Builder
	visited := make(map[string]bool)
	edgesPrinted := make(map[string]bool)

	for _, node := range g.Nodes {
		g.buildD2FromNode(node, visited, edgesPrinted, &builder)
	}
	// Isolated nodes still show up in the diagram.
	for _, node := range g.Nodes {
		if !g.connected(node.ID) {
			builder.WriteString(node.ID + "\n")
		}
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func (g *Graph[T]) ToD2(path string) error {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.WriteD2(f)
}

func (g *Graph[T]) connected(id string) bool {
	for _, edge := range g.Edges {
		if edge.Left.ID == id || edge.Right.ID == id {
			return true
		}
	}
	return false
}

func (g *Graph[T]) buildD2FromNode(node *Node[T], visited, edgesPrinted map[string]bool, builder *strings.Builder) {
	if visited[node.ID] {
		return
	}
	visited[node.ID] = true
	for _, edge := range g.Edges {
		if edge.Left.ID == node.ID {
			edgeKey := fmt.Sprintf("%s->%s", edge.Left.ID, edge.Right.ID)
			if !edgesPrinted[edgeKey] {
				builder.WriteString(fmt.Sprintf("%s -> %s\n", edge.Left.ID, edge.Right.ID))
				edgesPrinted[edgeKey] = true
			}
			g.buildD2FromNode(edge.Right, visited, edgesPrinted, builder)
		}
	}
}
