package room

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/Faultbox/roomtex/pkg/formats"
)

// LayerPrefix starts every photo layer file name: Room0.png, Room1.png, ...
const LayerPrefix = "Room"

// ErrLayerSize is returned when photo layers differ in size. Layers are
// sampled as one array, so all of them must match the first.
var ErrLayerSize = errors.New("layer size mismatch")

// layerDecoders maps a photo file extension to its decoder.
var layerDecoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
}

// Layer is one captured photo. Index is the layer's slot in the texture
// array and matches the photo's view and projection matrices.
type Layer struct {
	Index int
	Name  string
	Image *image.NRGBA
}

// LayerName returns the file name written for layer index i.
func LayerName(i int) string {
	return LayerPrefix + strconv.Itoa(i) + ".png"
}

// parseLayerName returns the layer index encoded in a file name, or false
// if the name is not a photo layer.
func parseLayerName(name string) (int, bool) {
	ext := strings.ToLower(path.Ext(name))
	if _, ok := layerDecoders[ext]; !ok {
		return 0, false
	}
	base := strings.TrimSuffix(name, path.Ext(name))
	if !strings.HasPrefix(base, LayerPrefix) {
		return 0, false
	}
	idx, err := strconv.Atoi(base[len(LayerPrefix):])
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// LoadLayers decodes the photo layers at the root of fsys, ordered by the
// numeric suffix of their names. Suffixes must run from 0 without gaps or
// duplicates, otherwise ErrIndexOutOfRange is returned.
func LoadLayers(fsys fs.FS) ([]Layer, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing layers: %w", err)
	}

	var layers []Layer
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if idx, ok := parseLayerName(e.Name()); ok {
			layers = append(layers, Layer{Index: idx, Name: e.Name()})
		}
	}

	sort.Slice(layers, func(i, j int) bool {
		return layers[i].Index < layers[j].Index
	})
	for i, l := range layers {
		if l.Index != i {
			return nil, fmt.Errorf("%w: layer %s in slot %d of %d", formats.ErrIndexOutOfRange, l.Name, i, len(layers))
		}
	}

	for i := range layers {
		img, err := decodeLayer(fsys, layers[i].Name)
		if err != nil {
			return nil, err
		}
		if i > 0 && img.Bounds().Size() != layers[0].Image.Bounds().Size() {
			return nil, fmt.Errorf("%w: %s is %v, %s is %v", ErrLayerSize,
				layers[i].Name, img.Bounds().Size(), layers[0].Name, layers[0].Image.Bounds().Size())
		}
		layers[i].Image = img
	}

	return layers, nil
}

func decodeLayer(fsys fs.FS, name string) (*image.NRGBA, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	decode := layerDecoders[strings.ToLower(path.Ext(name))]
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts img to an NRGBA image anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// LayerSize returns the shared size of the layers, or the zero point when
// there are none.
func LayerSize(layers []Layer) image.Point {
	if len(layers) == 0 || layers[0].Image == nil {
		return image.Point{}
	}
	return layers[0].Image.Bounds().Size()
}

// WriteLayers writes each layer to dir as Room<index>.png.
func WriteLayers(dir string, layers []Layer) error {
	for _, l := range layers {
		if err := writeImage(filepath.Join(dir, LayerName(l.Index)), l.Image, png.Encode); err != nil {
			return err
		}
	}
	return nil
}

// ExportWebP writes each layer to dir as Room<index>.webp (lossless).
func ExportWebP(dir string, layers []Layer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	encode := func(w io.Writer, img image.Image) error {
		return nativewebp.Encode(w, img, nil)
	}
	for _, l := range layers {
		name := LayerPrefix + strconv.Itoa(l.Index) + ".webp"
		if err := writeImage(filepath.Join(dir, name), l.Image, encode); err != nil {
			return err
		}
	}
	return nil
}

func writeImage(dst string, img image.Image, encode func(io.Writer, image.Image) error) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(dst), err)
	}
	return f.Close()
}
