// Package model defines core data structures for depscope.
package model

import "sort"

// Language identifies a supported source language.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRuby       Language = "ruby"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangUnknown    Language = "unknown"
)

// ParseStatus records whether a node's content could be read and scanned.
type ParseStatus string

const (
	StatusOK         ParseStatus = "ok"
	StatusParseError ParseStatus = "parse-error"
	StatusUnreadable ParseStatus = "unreadable"
	// StatusTruncated marks placeholder nodes discovered past the node
	// ceiling; they are registered but never expanded.
	StatusTruncated ParseStatus = "truncated"
)

// FileNode is a single file in the dependency graph.
// Identity is the canonical absolute path; nodes are immutable after
// creation except for Status.
type FileNode struct {
	Path     string // canonical absolute path
	Rel      string // repo-relative path, used for display
	Language Language
	Status   ParseStatus
	Order    int // BFS discovery index, 0 = focus file
	Depth    int // BFS depth from the focus file
	Size     int64
	Content  []byte // loaded during traversal; nil for unreadable/truncated nodes
}

// EdgeReason explains why an edge could not be resolved cleanly.
type EdgeReason string

const (
	ReasonNone      EdgeReason = ""
	ReasonNotFound  EdgeReason = "not-found"
	ReasonAmbiguous EdgeReason = "ambiguous"
	ReasonDynamic   EdgeReason = "dynamic-unsupported"
)

// ImportEdge is a directed import relation. To is empty when the
// specifier did not resolve; the raw specifier is always retained.
type ImportEdge struct {
	From      string // canonical path of the importing node
	To        string // canonical path of the target, "" if unresolved
	Specifier string
	Line      int
	Reason    EdgeReason
	Cyclic    bool
}

// Resolved reports whether the edge points at a graph node.
func (e *ImportEdge) Resolved() bool {
	return e.To != ""
}

// DependencyGraph holds every discovered file and import relation for
// one analysis run, rooted at the focus file.
type DependencyGraph struct {
	Root      string // canonical path of the focus file
	RepoRoot  string
	Nodes     map[string]*FileNode
	NodeOrder []string // canonical paths in BFS discovery order
	Edges     []ImportEdge
	Truncated bool
}

// NewDependencyGraph returns an empty graph for the given roots.
func NewDependencyGraph(repoRoot, root string) *DependencyGraph {
	return &DependencyGraph{
		Root:     root,
		RepoRoot: repoRoot,
		Nodes:    make(map[string]*FileNode),
	}
}

// AddNode registers a node, preserving the canonical-path uniqueness
// invariant. Returns false if a node with the same path already exists.
func (g *DependencyGraph) AddNode(n *FileNode) bool {
	if _, dup := g.Nodes[n.Path]; dup {
		return false
	}
	n.Order = len(g.NodeOrder)
	g.Nodes[n.Path] = n
	g.NodeOrder = append(g.NodeOrder, n.Path)
	return true
}

// Node returns the node for a canonical path, or nil.
func (g *DependencyGraph) Node(path string) *FileNode {
	return g.Nodes[path]
}

// Summary aggregates the counts reported after a run. Nodes counts
// expanded nodes only; placeholders past the truncation ceiling are
// reported separately.
type Summary struct {
	Nodes        int   `json:"nodes"`
	Placeholders int   `json:"placeholder_nodes,omitempty"`
	Edges        int   `json:"edges"`
	Unresolved   int   `json:"unresolved_edges"`
	Cyclic       int   `json:"cyclic_edges"`
	Truncated    bool  `json:"truncated"`
	Bytes        int64 `json:"bytes"`
}

// Summarize computes the graph summary.
func (g *DependencyGraph) Summarize() Summary {
	s := Summary{
		Edges:     len(g.Edges),
		Truncated: g.Truncated,
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if !e.Resolved() {
			s.Unresolved++
		}
		if e.Cyclic {
			s.Cyclic++
		}
	}
	for _, path := range g.NodeOrder {
		n := g.Nodes[path]
		if n.Status == StatusTruncated {
			s.Placeholders++
			continue
		}
		s.Nodes++
		s.Bytes += n.Size
	}
	return s
}

// Severity ranks findings; higher values sort first.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	}
	return "unknown"
}

// MarshalJSON renders the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Category is the defect taxonomy bucket a rule belongs to.
type Category string

const (
	CategoryImportDependency   Category = "import-dependency"
	CategoryTypeMismatch       Category = "type-mismatch"
	CategoryConfiguration      Category = "configuration"
	CategoryResourceManagement Category = "resource-management"
	CategoryConcurrency        Category = "concurrency"
	CategoryAPIMisuse          Category = "api-misuse"
)

// Finding is one rule match (or structural condition) on one node.
// Immutable once created.
type Finding struct {
	RuleID    string   `json:"rule"`
	Category  Category `json:"category"`
	Severity  Severity `json:"severity"`
	Path      string   `json:"file"`
	Line      int      `json:"line"`
	Message   string   `json:"message"`
	NodeOrder int      `json:"-"` // BFS discovery order of the node, for the ordering contract
}

// SortFindings applies the ordering contract: severity descending,
// then the node's BFS discovery order, then line ascending, with the
// rule id as a final stable tiebreak.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.NodeOrder != b.NodeOrder {
			return a.NodeOrder < b.NodeOrder
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}
