// Package main provides magolorc, the Magolor build driver: it runs the
// front-end pipeline over a list of source files, pretty-prints any
// diagnostics, and writes the emitted C++ translation unit.
//
// Exit codes: 0 on success, 1 when any diagnostic of severity Error was
// reported, 2 on I/O or invocation failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lucas-veyrier/magolor/build"
	"github.com/lucas-veyrier/magolor/codegen"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/internal/ident"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/manifest"
)

var version = "dev"

const (
	exitOK         = 0
	exitDiagnostic = 1
	exitUsage      = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("magolorc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		out         = fs.String("out", "", "output file for the generated C++ program (default: derived from the manifest package name, else out.cpp)")
		root        = fs.String("root", "src", "package source root stripped from module names")
		manifestPth = fs.String("manifest", "project.toml", "project manifest path (read when present)")
		preludeOnly = fs.Bool("emit-prelude-only", false, "write only the standard prelude and exit")
		traceOn     = fs.Bool("trace", false, "enable pipeline tracing on stderr")
		showVer     = fs.Bool("version", false, "print version and exit")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: magolorc [options] file.mg...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *showVer {
		fmt.Fprintf(stdout, "magolorc %s\n", version)
		return exitOK
	}

	var logger *slog.Logger
	if *traceOn {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if *preludeOnly {
		if *out == "" {
			*out = "prelude.cpp"
		}
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(stderr, "magolorc: %v\n", err)
			return exitUsage
		}
		defer f.Close()
		if err := codegen.New(nil, logger).EmitPrelude(f); err != nil {
			fmt.Fprintf(stderr, "magolorc: %v\n", err)
			return exitUsage
		}
		return exitOK
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return exitUsage
	}

	// The manifest is read only for the package name, which names the
	// default output file, and for the name/version logged when tracing;
	// the source root comes from -root. Dependency resolution belongs to
	// the external package tooling.
	packageName := ""
	if m, err := manifest.Load(*manifestPth); err == nil {
		packageName = m.Project.Name
		if logger != nil {
			logger.Info("building package",
				slog.String("name", m.Project.Name),
				slog.String("version", m.Project.Version),
			)
		}
	} else if !errors.Is(err, os.ErrNotExist) && logger != nil {
		logger.Warn("manifest unreadable", slog.String("error", err.Error()))
	}

	// The lockfile is a generated artifact of the external package
	// tooling; it is read here only to report what the build is pinned
	// to, never to resolve or fetch anything.
	lockPath := filepath.Join(filepath.Dir(*manifestPth), ".magolor", "lock.toml")
	if lf, err := manifest.LoadLockfile(lockPath); err == nil {
		if logger != nil {
			logger.Info("lockfile read",
				slog.String("root", lf.Root.Name),
				slog.Int("packages", len(lf.Packages)),
			)
			for _, pkg := range lf.Packages {
				logger.Debug("locked package",
					slog.String("name", pkg.Name),
					slog.String("version", pkg.Version),
					slog.String("location", pkg.Location),
				)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) && logger != nil {
		logger.Warn("lockfile unreadable", slog.String("error", err.Error()))
	}

	if *out == "" {
		*out = "out.cpp"
		if packageName != "" {
			if base := ident.ToLowerSnake(packageName); base != "" {
				*out = base + ".cpp"
			}
		}
	}

	inputs := make([]build.Input, 0, len(files))
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "magolorc: %v\n", err)
			return exitUsage
		}
		id, idErr := location.SourceIDFromPath(path)
		if idErr != nil {
			id = location.NewSourceID(path)
		}
		inputs = append(inputs, build.Input{Path: path, Content: content, SourceID: id})
	}

	res, err := build.Run(context.Background(), inputs, build.Options{
		SourceRoot: *root,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "magolorc: %v\n", err)
		return exitUsage
	}

	if res.Diags.Len() > 0 {
		renderer := diag.NewRenderer(
			diag.WithSourceProvider(res.Sources),
			diag.WithModuleRoot(*root),
		)
		fmt.Fprint(stderr, renderer.FormatResult(res.Diags))
	}
	if res.Diags.HasErrors() {
		return exitDiagnostic
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(stderr, "magolorc: %v\n", err)
		return exitUsage
	}
	defer f.Close()
	if err := res.Emit(context.Background(), f); err != nil {
		fmt.Fprintf(stderr, "magolorc: %v\n", err)
		return exitUsage
	}

	if logger != nil {
		logger.Info("build complete",
			slog.String("package", packageName),
			slog.String("out", *out),
			slog.Int("modules", len(res.Modules)),
		)
	}
	return exitOK
}
