// Package room reads and writes complete room packages: the mesh, matrix and
// supplementary text files of a capture plus its photo layers.
package room

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Faultbox/roomtex/pkg/encoding"
	"github.com/Faultbox/roomtex/pkg/formats"
)

// Package file names.
const (
	MeshFile          = "RoomMesh.txt"
	MatricesFile      = "RoomMatrices.txt"
	SupplementaryFile = "SupplementaryInfo.txt"
)

// Package is a decoded room package. It owns all of its data.
type Package struct {
	Mesh        *formats.MeshDocument
	Matrices    *formats.MatrixSet
	Orientation *formats.Orientation
	Layers      []Layer
}

// ReadOptions controls Read. A nil *ReadOptions uses the defaults.
type ReadOptions struct {
	Completion formats.CompletionMode
	// SkipLayers leaves Package.Layers empty without decoding any photos.
	SkipLayers bool
}

// ReadDir reads a room package from a directory.
func ReadDir(dir string, opts *ReadOptions) (*Package, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", formats.ErrSourceUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", formats.ErrSourceUnavailable, dir)
	}
	return Read(os.DirFS(dir), opts)
}

// Read reads a room package from the root of fsys.
//
// The mesh and matrix files are required; a missing one returns an error
// wrapping formats.ErrSourceUnavailable. The supplementary info file and the
// photos are optional. Placements from the supplementary file are applied
// to the decoded sub-meshes.
func Read(fsys fs.FS, opts *ReadOptions) (*Package, error) {
	var o ReadOptions
	if opts != nil {
		o = *opts
	}

	matricesText, err := readText(fsys, MatricesFile)
	if err != nil {
		return nil, err
	}
	matrices, err := formats.DecodeMatrices(matricesText)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", MatricesFile, err)
	}

	orientation := &formats.Orientation{}
	supplementaryText, err := readText(fsys, SupplementaryFile)
	switch {
	case err == nil:
		orientation = formats.DecodeOrientation(supplementaryText)
	case !errors.Is(err, formats.ErrSourceUnavailable):
		return nil, err
	}

	meshText, err := readText(fsys, MeshFile)
	if err != nil {
		return nil, err
	}
	mesh, err := formats.DecodeMesh(meshText, &formats.MeshOptions{
		Orientation: orientation,
		Completion:  o.Completion,
	})
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", MeshFile, err)
	}

	pkg := &Package{
		Mesh:        mesh,
		Matrices:    matrices,
		Orientation: orientation,
	}

	if !o.SkipLayers {
		pkg.Layers, err = LoadLayers(fsys)
		if err != nil {
			return nil, fmt.Errorf("loading layers: %w", err)
		}
	}

	return pkg, nil
}

// IsPackageFile reports whether name is one of the files Read consumes.
func IsPackageFile(name string) bool {
	switch name {
	case MeshFile, MatricesFile, SupplementaryFile:
		return true
	}
	_, ok := parseLayerName(name)
	return ok
}

// readText reads a package text file as UTF-8.
func readText(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", formats.ErrSourceUnavailable, name)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return encoding.ToUTF8(data), nil
}

type packageFile struct {
	name string
	data []byte
}

// TrimPhotos keeps the first n photos of pkg and returns how many remain.
// A negative n keeps all of them. The count is clamped the way Write clamps
// its photoCount, and layers past it are dropped.
func TrimPhotos(pkg *Package, n int) int {
	if n < 0 {
		n = len(pkg.Matrices.View)
	}
	n = pkg.Matrices.PhotoCount(n)
	if n < len(pkg.Layers) {
		pkg.Layers = pkg.Layers[:n]
	}
	return n
}

// Write stores pkg in dir, creating it if needed. Only the first photoCount
// view and projection matrices are written (see formats.EncodeMatrices).
// The supplementary info file is written only when pkg has placements.
func Write(dir string, pkg *Package, photoCount int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	files := []packageFile{
		{MeshFile, formats.EncodeMesh(pkg.Mesh)},
		{MatricesFile, formats.EncodeMatrices(pkg.Matrices, photoCount)},
	}
	if !pkg.Orientation.Empty() {
		files = append(files, packageFile{SupplementaryFile, formats.EncodeOrientation(pkg.Orientation)})
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	return WriteLayers(dir, pkg.Layers)
}
