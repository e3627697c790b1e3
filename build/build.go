// Package build drives the front-end pipeline over a set of source
// units: register sources, lex, parse, register modules, resolve imports,
// type check, and optionally emit the C++ translation unit.
//
// The same driver serves the CLI build and the language server's
// per-snapshot analysis; each Run creates fresh source and module
// registries, so no state leaks between builds.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/check"
	"github.com/lucas-veyrier/magolor/codegen"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/internal/source"
	"github.com/lucas-veyrier/magolor/internal/trace"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
	"github.com/lucas-veyrier/magolor/parser"
	"github.com/lucas-veyrier/magolor/stdlib"
)

// Input is one source unit to build.
type Input struct {
	// Path is the file path relative to the package source root; it
	// determines the module name unless ModuleName is set.
	Path string

	// ModuleName overrides the name derived from Path.
	ModuleName string

	// Content is the source text.
	Content []byte

	// SourceID attributes spans and diagnostics; a zero value synthesizes
	// one from Path.
	SourceID location.SourceID
}

// Options configure a Run.
type Options struct {
	// SourceRoot is the package root stripped from input paths when
	// deriving module names (conventionally "src").
	SourceRoot string

	// Catalog is the stdlib descriptor; nil uses the embedded default.
	Catalog *stdlib.Catalog

	// Logger enables pipeline tracing; nil disables it.
	Logger *slog.Logger
}

// Result is the outcome of one Run.
type Result struct {
	// Registry holds every registered module.
	Registry *modreg.Registry

	// Sources holds each unit's content and offset tables.
	Sources *source.Registry

	// Modules lists the built modules in input order.
	Modules []*modreg.Module

	// Diags is the sorted diagnostic snapshot of the whole pipeline.
	Diags diag.Result

	// logger carries the run's logger forward so Emit traces under the
	// same sink.
	logger *slog.Logger
}

// Run executes the pipeline over inputs. A non-nil error reports a
// catastrophic failure (duplicate source registration); content problems
// are diagnostics in Result.Diags, and a partial Result accompanies every
// error return.
func Run(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = stdlib.Default()
	}

	coll := diag.NewCollectorUnlimited()
	res := &Result{
		Registry: modreg.NewRegistry(),
		Sources:  source.NewRegistry(),
		logger:   opts.Logger,
	}

	op := trace.Begin(ctx, opts.Logger, "magolor.build.run", slog.Int("inputs", len(inputs)))

	for _, in := range inputs {
		id := in.SourceID
		if id.IsZero() {
			id = location.NewSourceID(in.Path)
		}
		if err := res.Sources.Register(id, in.Content); err != nil {
			res.Diags = coll.Result()
			err = fmt.Errorf("register source %s: %w", id, err)
			op.End(err)
			return res, err
		}

		name := in.ModuleName
		if name == "" {
			name = modreg.ModuleNameForPath(in.Path, opts.SourceRoot)
		}

		trace.Debug(ctx, opts.Logger, "magolor.parser.parse",
			slog.String("module", name), slog.String("source", id.String()))
		prog := parser.Parse(id, in.Content, coll)

		m := &modreg.Module{
			Name:     name,
			FilePath: in.Path,
			SourceID: id,
			Program:  prog,
		}
		res.Registry.Register(m)
		res.Modules = append(res.Modules, m)
	}

	resolver := modreg.NewResolver(res.Registry, catalog)
	for _, m := range res.Modules {
		resolver.Resolve(m, coll)
		trace.DebugLazy(ctx, opts.Logger, "magolor.resolve.imports", func() []slog.Attr {
			paths := make([]string, len(m.Imports))
			for i, imp := range m.Imports {
				paths[i] = imp.Path
			}
			return []slog.Attr{slog.String("module", m.Name), slog.Any("resolved", paths)}
		})
	}

	check.New(res.Registry, catalog, coll, opts.Logger).CheckAll(ctx)

	res.Diags = coll.Result()
	op.End(nil, slog.Bool("ok", res.Diags.OK()), slog.Int("issues", res.Diags.Len()))
	return res, nil
}

// Emit writes the C++ translation unit for the built modules, in input
// order. Callers must not emit when Diags has errors; Emit returns an
// error in that case rather than producing a broken program.
func (r *Result) Emit(ctx context.Context, w io.Writer) error {
	if r.Diags.HasErrors() {
		return fmt.Errorf("emit: build has %d error(s)", r.Diags.SeverityCounts().Fatal+r.Diags.SeverityCounts().Errors)
	}
	progs := make([]*ast.Program, 0, len(r.Modules))
	for _, m := range r.Modules {
		if m.Program != nil {
			progs = append(progs, m.Program)
		}
	}
	return codegen.New(nil, r.logger).Generate(ctx, w, progs)
}
