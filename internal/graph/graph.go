// Package graph builds the import-dependency graph for a focus file.
package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/phobologic/depscope/internal/discover"
	"github.com/phobologic/depscope/internal/lang"
	"github.com/phobologic/depscope/internal/model"
	"github.com/phobologic/depscope/internal/parse"
	"github.com/phobologic/depscope/internal/resolve"
)

// ErrRepoRoot marks an unusable repository root (fatal).
var ErrRepoRoot = errors.New("invalid repository root")

// ErrFocusFile marks a missing or unreadable focus file (fatal).
var ErrFocusFile = errors.New("focus file missing or unreadable")

// Options tune a traversal. Zero values mean: unbounded nodes,
// unbounded file size, GOMAXPROCS workers, no extra source roots.
type Options struct {
	MaxNodes    int
	MaxFileSize int64
	Workers     int
	SourceRoots []string
	Warnings    io.Writer
}

// Build runs a breadth-first traversal from focusFile (absolute or
// relative to repoRoot) and returns the dependency graph. Only the two
// fatal setup conditions return an error; every per-file condition is
// recorded on the graph and surfaces later as a finding.
func Build(repoRoot, focusFile string, opts Options) (*model.DependencyGraph, error) {
	if opts.Warnings == nil {
		opts.Warnings = io.Discard
	}

	rootAbs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRepoRoot, repoRoot, err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRepoRoot, repoRoot)
	}

	focusAbs := focusFile
	if !filepath.IsAbs(focusAbs) {
		focusAbs = filepath.Join(rootAbs, focusFile)
	}
	focusAbs = filepath.Clean(focusAbs)

	focusRel, err := filepath.Rel(rootAbs, focusAbs)
	if err != nil || focusRel == ".." || len(focusRel) > 2 && focusRel[:3] == ".."+string(filepath.Separator) {
		return nil, fmt.Errorf("%w: %s is outside %s", ErrFocusFile, focusFile, repoRoot)
	}
	if _, err := os.ReadFile(focusAbs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFocusFile, focusFile)
	}
	focusRel = filepath.ToSlash(focusRel)

	index, err := discover.Build(rootAbs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepoRoot, err)
	}
	resolver := resolve.New(index, opts.SourceRoots)

	b := &builder{
		graph:    model.NewDependencyGraph(rootAbs, focusAbs),
		index:    index,
		resolver: resolver,
		opts:     opts,
	}
	b.run(focusRel)
	markCycles(b.graph)

	return b.graph, nil
}

type builder struct {
	graph    *model.DependencyGraph
	index    *discover.Index
	resolver *resolve.Resolver
	opts     Options
	expanded int // non-placeholder node count, checked against the ceiling
}

// prefetched is the read-only result of loading and extracting one
// enqueued file ahead of graph insertion.
type prefetched struct {
	content  []byte
	size     int64
	status   model.ParseStatus
	language model.Language
	cfg      *lang.Language
	imports  []lang.Import
}

// run is the breadth-first traversal. Loading and extraction for a
// whole frontier happen on a bounded worker pool; results are
// re-sequenced into BFS order before the single-owner graph mutation,
// so node and edge sets need no locking.
func (b *builder) run(focusRel string) {
	b.graph.AddNode(&model.FileNode{
		Path:   b.index.Abs(focusRel),
		Rel:    focusRel,
		Status: model.StatusOK,
	})
	b.expanded++
	frontier := []string{focusRel}
	depth := 0

	for len(frontier) > 0 {
		results := b.prefetch(frontier)
		var next []string

		for i, rel := range frontier {
			node := b.graph.Node(b.index.Abs(rel))
			r := &results[i]

			node.Size = r.size
			node.Content = r.content
			node.Language = r.language
			node.Status = r.status
			if r.status != model.StatusOK || r.cfg == nil {
				continue
			}

			for _, imp := range r.imports {
				next = b.addEdges(node, rel, imp, r.cfg, depth+1, next)
			}
		}

		frontier = next
		depth++
	}
}

// addEdges records the edge(s) for one extracted specifier and returns
// the frontier with any newly discovered node appended.
func (b *builder) addEdges(node *model.FileNode, rel string, imp lang.Import, cfg *lang.Language, depth int, next []string) []string {
	if imp.Dynamic {
		b.graph.Edges = append(b.graph.Edges, model.ImportEdge{
			From:      node.Path,
			Specifier: imp.Specifier,
			Line:      imp.Line,
			Reason:    model.ReasonDynamic,
		})
		return next
	}

	res := b.resolver.Resolve(imp.Specifier, cfg, rel)
	if res.Path == "" {
		b.graph.Edges = append(b.graph.Edges, model.ImportEdge{
			From:      node.Path,
			Specifier: imp.Specifier,
			Line:      imp.Line,
			Reason:    model.ReasonNotFound,
		})
		return next
	}

	targetAbs := b.index.Abs(res.Path)
	if target := b.graph.Node(targetAbs); target == nil {
		if b.opts.MaxNodes > 0 && b.expanded >= b.opts.MaxNodes {
			// Past the ceiling: register a placeholder so the edge
			// stays representable, but never expand it.
			b.graph.AddNode(&model.FileNode{
				Path:     targetAbs,
				Rel:      res.Path,
				Language: model.LangUnknown,
				Status:   model.StatusTruncated,
				Depth:    depth,
			})
			b.graph.Truncated = true
		} else {
			b.graph.AddNode(&model.FileNode{
				Path:   targetAbs,
				Rel:    res.Path,
				Status: model.StatusOK,
				Depth:  depth,
			})
			b.expanded++
			next = append(next, res.Path)
		}
	}

	b.graph.Edges = append(b.graph.Edges, model.ImportEdge{
		From:      node.Path,
		To:        targetAbs,
		Specifier: imp.Specifier,
		Line:      imp.Line,
		Reason:    res.Reason,
	})
	return next
}

// prefetch loads, classifies, and extracts every frontier file on a
// bounded worker pool, collecting results by index so BFS order is
// preserved.
func (b *builder) prefetch(frontier []string) []prefetched {
	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(frontier) {
		workers = len(frontier)
	}

	results := make([]prefetched, len(frontier))
	work := make(chan int, len(frontier))

	var wg sync.WaitGroup
	var warnMu sync.Mutex

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = b.load(frontier[idx], &warnMu)
			}
		}()
	}

	for i := range frontier {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func (b *builder) load(rel string, warnMu *sync.Mutex) prefetched {
	warnf := func(format string, args ...any) {
		warnMu.Lock()
		fmt.Fprintf(b.opts.Warnings, format, args...)
		warnMu.Unlock()
	}

	absPath := b.index.Abs(rel)
	source, err := os.ReadFile(absPath)
	if err != nil {
		warnf("Warning: %s: %v\n", rel, err)
		return prefetched{status: model.StatusUnreadable, language: model.LangUnknown}
	}

	r := prefetched{size: int64(len(source)), status: model.StatusOK}

	if b.opts.MaxFileSize > 0 && r.size > b.opts.MaxFileSize {
		warnf("Warning: %s: skipped (>%d bytes)\n", rel, b.opts.MaxFileSize)
		r.status = model.StatusUnreadable
		r.language = model.LangUnknown
		return r
	}

	r.content = source
	r.language = lang.Detect(rel, source)
	r.cfg = lang.Get(r.language)

	imports, err := parse.Imports(r.cfg, source)
	if err != nil {
		warnf("Warning: %s: %v\n", rel, err)
		r.status = model.StatusParseError
		return r
	}
	r.imports = imports
	return r
}

// markCycles flags every edge that closes a cycle, via an iterative
// depth-first walk over resolved edges (explicit stack, no recursion).
func markCycles(g *model.DependencyGraph) {
	adj := make(map[string][]int, len(g.Nodes))
	for i := range g.Edges {
		if g.Edges[i].Resolved() {
			adj[g.Edges[i].From] = append(adj[g.Edges[i].From], i)
		}
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.Nodes))

	type frame struct {
		path string
		next int
	}

	// Every node is reachable from the root by construction, but walk
	// from all nodes in discovery order anyway so partial graphs stay
	// covered.
	for _, start := range g.NodeOrder {
		if state[start] != unvisited {
			continue
		}
		stack := []frame{{path: start}}
		state[start] = inProgress

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			edges := adj[f.path]
			if f.next < len(edges) {
				ei := edges[f.next]
				f.next++
				to := g.Edges[ei].To
				switch state[to] {
				case unvisited:
					state[to] = inProgress
					stack = append(stack, frame{path: to})
				case inProgress:
					g.Edges[ei].Cyclic = true
				}
			} else {
				state[f.path] = done
				stack = stack[:len(stack)-1]
			}
		}
	}
}
