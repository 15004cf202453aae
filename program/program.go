// Package program implements the coordinator of spec.md §4.7: the
// file registry, the scope registry (one PlatformScope root plus one
// DescriptorScope per component descriptor), the dependency graph
// wiring components' script-tag imports, and the signal-based
// add/remove-file lifecycle events. Grounded on the teacher's
// server.Server/Workspace shape (server/server.go, server/workspace.go)
// and its Initialize/Initialized sequencing (server/lifecycle.go),
// generalized from an LSP request/response dispatcher into a plain
// load/query coordinator; batch loading is modeled on symbols.go's
// AnalyzeFile goroutine/channel import pipeline, restructured onto
// golang.org/x/sync/errgroup (spec.md §4.9).
package program

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/brightscope/bsc/depgraph"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/parser"
	"github.com/brightscope/bsc/scope"
	"github.com/brightscope/bsc/signal"
	"github.com/brightscope/bsc/sourcefile"
	"github.com/brightscope/bsc/util"
)

// FileEvent carries the path added or removed.
type FileEvent struct {
	AbsPath util.Path
}

// ScopeEvent carries the scope added or removed.
type ScopeEvent struct {
	Scope *scope.Scope
}

// InputFile is one file to load: its absolute path, project-relative
// package path, and raw source text.
type InputFile struct {
	AbsPath util.Path
	PkgPath util.PkgPath
	Source  string
}

// Program is the top-level coordinator: the file registry, the scope
// registry, the platform root, and the dependency graph, all mutated
// under a single mutex per spec.md §5's single-logical-worker model.
type Program struct {
	ID uuid.UUID

	RootDir util.Path
	Mode    parser.Mode

	mu sync.Mutex

	files  map[util.Path]sourcefile.File
	scopes map[string]*scope.DescriptorScope // keyed by component name

	Platform *scope.Scope
	Deps     *depgraph.Graph

	fileAdded    *signal.Signal[FileEvent]
	fileRemoved  *signal.Signal[FileEvent]
	scopeAdded   *signal.Signal[ScopeEvent]
	scopeRemoved *signal.Signal[ScopeEvent]
}

// New builds an empty Program rooted at rootDir, parsing code files in
// mode.
func New(rootDir util.Path, mode parser.Mode) *Program {
	return &Program{
		ID:           uuid.New(),
		RootDir:      rootDir,
		Mode:         mode,
		files:        map[util.Path]sourcefile.File{},
		scopes:       map[string]*scope.DescriptorScope{},
		Platform:     scope.NewPlatformScope(),
		Deps:         depgraph.New(),
		fileAdded:    signal.New[FileEvent](),
		fileRemoved:  signal.New[FileEvent](),
		scopeAdded:   signal.New[ScopeEvent](),
		scopeRemoved: signal.New[ScopeEvent](),
	}
}

func (p *Program) OnFileAdded(fn func(FileEvent)) signal.Handle     { return p.fileAdded.Subscribe(fn) }
func (p *Program) OnFileRemoved(fn func(FileEvent)) signal.Handle   { return p.fileRemoved.Subscribe(fn) }
func (p *Program) OnScopeAdded(fn func(ScopeEvent)) signal.Handle   { return p.scopeAdded.Subscribe(fn) }
func (p *Program) OnScopeRemoved(fn func(ScopeEvent)) signal.Handle { return p.scopeRemoved.Subscribe(fn) }

// isDescriptorPath reports whether absPath names an XML-like
// component descriptor rather than dialect source, by extension
// (spec.md §4.2's two file kinds).
func isDescriptorPath(absPath util.Path) bool {
	return strings.EqualFold(filepath.Ext(absPath), ".xml")
}

// LoadAll parses every input concurrently (file parsing is the spec's
// named suspension point, §5) with a bounded fan-out, then registers
// each parsed result on the program's single logical worker, one at a
// time, preserving the register → emit → update-graph ordering
// invariant. The first parse failure cancels the batch: parses not yet
// started are skipped, files already parsed are still registered, and
// only that first failure is returned (wrapped in a multierror).
func (p *Program) LoadAll(ctx context.Context, inputs []InputFile) error {
	parsed := make([]sourcefile.File, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f, err := p.parseInput(in)
			if err != nil {
				return err
			}
			parsed[i] = f
			return nil
		})
	}

	var errs *multierror.Error
	if err := g.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range parsed {
		if f == nil {
			continue
		}
		p.addFileLocked(f)
	}
	p.resolveDescriptorParentsLocked()

	return errs.ErrorOrNil()
}

func (p *Program) parseInput(in InputFile) (sourcefile.File, error) {
	if isDescriptorPath(in.AbsPath) {
		return sourcefile.NewDescriptorFile(in.AbsPath, in.PkgPath, in.Source)
	}
	return sourcefile.NewCodeFile(in.AbsPath, in.PkgPath, in.Source, p.Mode), nil
}

// AddFile parses and registers a single file, outside of a LoadAll
// batch (e.g. a watch-triggered single-file change).
func (p *Program) AddFile(in InputFile) error {
	f, err := p.parseInput(in)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addFileLocked(f)
	p.resolveDescriptorParentsLocked()
	return nil
}

func (p *Program) addFileLocked(f sourcefile.File) {
	if existing, ok := p.files[f.AbsPath()]; ok {
		p.removeFileLocked(existing.AbsPath())
	}
	p.files[f.AbsPath()] = f
	p.Deps.AddNode(f.PkgPath())

	if df, ok := f.(*sourcefile.DescriptorFile); ok {
		p.registerDescriptorLocked(df)
	}
	for _, ds := range p.scopes {
		ds.ApplyMembership(f)
	}
	p.Platform.Invalidate()
	p.fileAdded.Emit(FileEvent{AbsPath: f.AbsPath()})
}

func (p *Program) registerDescriptorLocked(df *sourcefile.DescriptorFile) {
	for _, ref := range df.ScriptTagImports {
		p.Deps.AddEdge(df.PkgPath(), ref.PkgPath)
	}
	ds := scope.NewDescriptorScope(df, p.resolveFile)
	ds.AttachParentScope(p.Platform)
	for _, existing := range p.files {
		ds.ApplyMembership(existing)
	}
	p.scopes[df.ComponentName] = ds
	p.scopeAdded.Emit(ScopeEvent{Scope: ds.Scope})
}

// resolveFile is the scope.FileResolver callback: does pkgPath name a
// known file, and under what on-disk case.
func (p *Program) resolveFile(pkgPath util.PkgPath) (util.PkgPath, bool) {
	for _, f := range p.files {
		if util.PkgPathEqual(f.PkgPath(), pkgPath) {
			return f.PkgPath(), true
		}
	}
	return "", false
}

// resolveDescriptorParentsLocked re-evaluates every descriptor scope's
// parent link against the current ComponentName catalog: a name match
// attaches to the named parent's scope, detaching from Platform first;
// no match (or no declared parent) leaves/returns it parented directly
// to Platform.
func (p *Program) resolveDescriptorParentsLocked() {
	for _, ds := range p.scopes {
		df := ds.Descriptor
		parentScope, ok := p.scopes[df.ParentName]
		if df.ParentName == "" || !ok {
			if df.ResolvedParent() != nil {
				df.DetachParent()
			}
			if ds.Parent() != p.Platform {
				ds.AttachParentScope(p.Platform)
			}
			continue
		}
		if df.ResolvedParent() == parentScope.Descriptor {
			continue
		}
		df.AttachParent(parentScope.Descriptor)
		ds.DetachParent()
		ds.AttachParentScope(parentScope.Scope)
	}
}

// RemoveFile drops a file from the registry and every scope's
// membership, tearing down its DescriptorScope if it owned one.
func (p *Program) RemoveFile(absPath util.Path) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeFileLocked(absPath)
}

func (p *Program) removeFileLocked(absPath util.Path) {
	f, ok := p.files[absPath]
	if !ok {
		return
	}
	delete(p.files, absPath)
	p.Deps.RemoveNode(f.PkgPath())

	if df, ok := f.(*sourcefile.DescriptorFile); ok {
		if ds, ok := p.scopes[df.ComponentName]; ok {
			ds.Close()
			delete(p.scopes, df.ComponentName)
			p.scopeRemoved.Emit(ScopeEvent{Scope: ds.Scope})
		}
	}
	for _, ds := range p.scopes {
		ds.RemoveFile(absPath)
	}
	p.Platform.Invalidate()
	p.fileRemoved.Emit(FileEvent{AbsPath: absPath})
}

// OnFileChanged re-parses and re-registers a changed file's content;
// the watch collaborator calls this on every observed write (spec.md
// §4.9's fsnotify wiring).
func (p *Program) OnFileChanged(absPath, pkgPath util.Path, source string) error {
	return p.AddFile(InputFile{AbsPath: absPath, PkgPath: pkgPath, Source: source})
}

// GetScopesForFile returns every DescriptorScope that currently
// accepted file, plus the platform root.
func (p *Program) GetScopesForFile(absPath util.Path) []*scope.Scope {
	out := []*scope.Scope{p.Platform}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ds := range p.scopes {
		if _, ok := ds.Files()[absPath]; ok {
			out = append(out, ds.Scope)
		}
	}
	return out
}

// ValidateAll runs validation for every registered scope and returns
// every scope's current diagnostics keyed by component name. It
// returns no error: validateOnce has no failure path.
func (p *Program) ValidateAll() map[string][]diagnostic.Diagnostic {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string][]diagnostic.Diagnostic{"platform": p.Platform.GetDiagnostics()}
	for name, ds := range p.scopes {
		out[name] = ds.GetDiagnostics()
	}
	return out
}

// Files returns the file registry, keyed by absolute path.
func (p *Program) Files() map[util.Path]sourcefile.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.files
}
