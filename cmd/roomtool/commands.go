package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/roomtex/internal/config"
	"github.com/Faultbox/roomtex/internal/logger"
	"github.com/Faultbox/roomtex/internal/watch"
	"github.com/Faultbox/roomtex/pkg/formats"
	"github.com/Faultbox/roomtex/pkg/room"
)

// readOptions builds room read options from the config.
func readOptions(cfg *config.Config, skipLayers bool) *room.ReadOptions {
	return &room.ReadOptions{
		Completion: cfg.CompletionMode(),
		SkipLayers: skipLayers || cfg.Decode.SkipLayers,
	}
}

// packageDir returns the first positional argument or the configured directory.
func packageDir(cfg *config.Config, fs *flag.FlagSet) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	return cfg.Package.Dir
}

// readPackage reads dir and logs the failure. A missing package file aborts
// the command without touching anything else.
func readPackage(dir string, opts *room.ReadOptions) (*room.Package, bool) {
	pkg, err := room.ReadDir(dir, opts)
	if err != nil {
		if errors.Is(err, formats.ErrSourceUnavailable) {
			logger.Error("package source unavailable", zap.String("dir", dir), zap.Error(err))
		} else {
			logger.Error("failed to read package", zap.String("dir", dir), zap.Error(err))
		}
		return nil, false
	}
	logger.Debug("package read",
		zap.String("dir", dir),
		zap.Int("submeshes", len(pkg.Mesh.SubMeshes)),
		zap.Int("layers", len(pkg.Layers)))
	return pkg, true
}

func cmdInfo(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("v", false, "List every sub-mesh")
	fs.Parse(args)

	dir := packageDir(cfg, fs)
	pkg, ok := readPackage(dir, readOptions(cfg, false))
	if !ok {
		return 1
	}

	var vertices, triangles int
	for _, sm := range pkg.Mesh.SubMeshes {
		vertices += len(sm.Vertices)
		triangles += len(sm.Triangles)
	}

	fmt.Printf("Package:     %s\n", dir)
	fmt.Printf("Sub-meshes:  %d\n", len(pkg.Mesh.SubMeshes))
	fmt.Printf("Vertices:    %d\n", vertices)
	fmt.Printf("Triangles:   %d\n", triangles)
	fmt.Printf("Views:       %d\n", len(pkg.Matrices.View))
	fmt.Printf("Projections: %d\n", len(pkg.Matrices.Projection))
	fmt.Printf("Models:      %d\n", len(pkg.Matrices.Model))
	fmt.Printf("Placements:  %d positions, %d rotations\n",
		len(pkg.Orientation.Positions), len(pkg.Orientation.Rotations))
	if size := room.LayerSize(pkg.Layers); len(pkg.Layers) > 0 {
		fmt.Printf("Layers:      %d (%dx%d)\n", len(pkg.Layers), size.X, size.Y)
	} else {
		fmt.Printf("Layers:      0\n")
	}

	if *verbose {
		surfaces, err := pkg.Surfaces()
		if err != nil {
			logger.Error("failed to bind surfaces", zap.String("dir", dir), zap.Error(err))
			return 1
		}

		fmt.Println()
		fmt.Printf("%-4s %-24s %8s %8s %8s %-7s %s\n", "#", "Name", "Verts", "Normals", "Tris", "Placed", "World bounds")
		for i, s := range surfaces {
			sm := s.SubMesh
			placed := "no"
			if sm.Placement != nil {
				placed = "yes"
			}
			bounds := "-"
			if lo, hi, ok := s.Bounds(); ok {
				bounds = fmt.Sprintf("(%g, %g, %g)..(%g, %g, %g)", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
			}
			fmt.Printf("%-4d %-24s %8d %8d %8d %-7s %s\n",
				i, s.Name, len(sm.Vertices), len(sm.Normals), len(sm.Triangles), placed, bounds)
		}
	}
	return 0
}

func cmdConfig(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: roomtool config <show|save> [file]")
		return 1
	}

	switch args[0] {
	case "show":
		fmt.Printf("Config dir:  %s\n", config.ConfigDir())
		fmt.Printf("Package dir: %s\n", cfg.Package.Dir)
		fmt.Printf("Completion:  %s\n", cfg.CompletionMode())
		fmt.Printf("Skip layers: %t\n", cfg.Decode.SkipLayers)
		fmt.Printf("Debounce:    %s\n", cfg.Watch.Debounce)
		fmt.Printf("Export dir:  %s\n", cfg.Export.Dir)
		fmt.Printf("Log level:   %s\n", cfg.Logging.Level)
		return 0

	case "save":
		var err error
		path := filepath.Join(config.ConfigDir(), "config.yaml")
		if len(args) > 1 {
			path = args[1]
			err = cfg.SaveTo(path)
		} else {
			err = cfg.Save()
		}
		if err != nil {
			logger.Error("failed to save config", zap.String("path", path), zap.Error(err))
			return 1
		}
		fmt.Printf("Saved config to %s\n", path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 1
	}
}

func cmdCheck(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Treat warnings as errors")
	fs.Parse(args)

	dir := packageDir(cfg, fs)
	pkg, ok := readPackage(dir, readOptions(cfg, false))
	if !ok {
		return 1
	}

	issues := pkg.Validate()
	for _, issue := range issues {
		fmt.Println(issue)
	}
	if _, err := pkg.Surfaces(); err != nil {
		fmt.Printf("error: %v\n", err)
		return 1
	}

	if room.HasErrors(issues) || (*strict && len(issues) > 0) {
		return 1
	}
	fmt.Printf("%s: OK (%d warnings)\n", dir, len(issues))
	return 0
}

func cmdWatch(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	dir := packageDir(cfg, fs)
	log := logger.Named("watch")

	w, err := watch.New(dir, watch.Options{
		Debounce: time.Duration(cfg.Watch.Debounce),
		Read:     readOptions(cfg, false),
		Logger:   log,
		OnReload: func(pkg *room.Package, err error) {
			if err != nil {
				return
			}
			for _, issue := range pkg.Validate() {
				log.Warn("validation", zap.Stringer("issue", issue))
			}
		},
	})
	if err != nil {
		logger.Error("failed to watch package", zap.String("dir", dir), zap.Error(err))
		return 1
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching package", zap.String("dir", dir), zap.Stringer("debounce", cfg.Watch.Debounce))
	if err := w.Run(ctx); err != nil {
		logger.Error("watch stopped", zap.Error(err))
		return 1
	}
	return 0
}

func cmdLayers(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("layers", flag.ExitOnError)
	fs.Parse(args)

	dir := packageDir(cfg, fs)
	out := cfg.Export.Dir
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}

	fsys := os.DirFS(dir)
	layers, err := room.LoadLayers(fsys)
	if err != nil {
		logger.Error("failed to load layers", zap.String("dir", dir), zap.Error(err))
		return 1
	}
	if len(layers) == 0 {
		logger.Warn("no photo layers found", zap.String("dir", dir))
		return 0
	}

	if err := room.ExportWebP(out, layers); err != nil {
		logger.Error("failed to export layers", zap.String("out", out), zap.Error(err))
		return 1
	}

	size := room.LayerSize(layers)
	fmt.Printf("Exported %d layers (%dx%d) to %s\n", len(layers), size.X, size.Y, out)
	return 0
}

func cmdRewrite(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("rewrite", flag.ExitOnError)
	photos := fs.Int("photos", -1, "Keep only the first N view/projection matrices (-1 = all)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: roomtool rewrite [-photos N] <dir> <out>")
		return 1
	}
	dir, out := fs.Arg(0), fs.Arg(1)

	pkg, ok := readPackage(dir, readOptions(cfg, false))
	if !ok {
		return 1
	}

	count := room.TrimPhotos(pkg, *photos)

	if err := room.Write(out, pkg, count); err != nil {
		logger.Error("failed to write package", zap.String("out", out), zap.Error(err))
		return 1
	}
	fmt.Printf("Wrote %d sub-meshes and %d photos to %s\n", len(pkg.Mesh.SubMeshes), count, out)
	return 0
}
