package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/roomtex/pkg/math"
)

// Mesh record markers.
const (
	markerObject = "o"
	markerVertex = "v"
	markerNormal = "vn"
	markerFace   = "f"

	subMeshGroupLabel = "submesh"
)

// Triangle holds three vertex indices. Indices keep the numbering of the
// source file and are never bounds-checked against the vertex list.
type Triangle [3]uint32

// SubMesh is one named piece of a room scan.
type SubMesh struct {
	// Name is everything after "o " on the object line, kept verbatim
	// including any leading or trailing spaces.
	Name      string
	Vertices  []math.Vec3
	Normals   []math.Vec3
	Triangles []Triangle

	// Placement is set only when orientation data was supplied to DecodeMesh.
	Placement *Placement
}

// MeshDocument is an ordered list of sub-meshes. The order pairs each
// sub-mesh with the model matrix or placement at the same index.
type MeshDocument struct {
	SubMeshes []SubMesh
}

// Names returns the sub-mesh names in document order.
func (d *MeshDocument) Names() []string {
	names := make([]string, len(d.SubMeshes))
	for i := range d.SubMeshes {
		names[i] = d.SubMeshes[i].Name
	}
	return names
}

// CompletionMode selects what finalizes a sub-mesh during decoding.
type CompletionMode int

const (
	// CompleteOnFaces finalizes a sub-mesh only when a run of face records
	// ends. Geometry not followed by faces is dropped, including a trailing
	// sub-mesh without faces. This matches how capture files were read
	// historically.
	CompleteOnFaces CompletionMode = iota

	// CompleteOnObject additionally finalizes pending geometry when the next
	// object marker or the end of input is reached.
	CompleteOnObject
)

// String returns the mode name used in configuration.
func (m CompletionMode) String() string {
	switch m {
	case CompleteOnFaces:
		return "faces"
	case CompleteOnObject:
		return "object"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseCompletionMode converts a configuration value to a CompletionMode.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch s {
	case "", "faces":
		return CompleteOnFaces, nil
	case "object":
		return CompleteOnObject, nil
	default:
		return 0, fmt.Errorf("unknown completion mode %q", s)
	}
}

// MeshOptions controls DecodeMesh. A nil *MeshOptions uses the defaults.
type MeshOptions struct {
	// Orientation, if non-empty, places the i-th completed sub-mesh.
	Orientation *Orientation
	Completion  CompletionMode
}

// EncodeMesh writes doc in the room mesh text format.
func EncodeMesh(doc *MeshDocument) []byte {
	var b strings.Builder
	for i := range doc.SubMeshes {
		sm := &doc.SubMeshes[i]

		b.WriteString(lineSeparator)
		b.WriteString(markerObject + " " + sm.Name + lineSeparator)
		for _, v := range sm.Vertices {
			writeVec3(&b, markerVertex, v)
		}
		b.WriteString(lineSeparator)
		for _, n := range sm.Normals {
			writeVec3(&b, markerNormal, n)
		}
		b.WriteString(lineSeparator)

		// Sub-meshes carry a single index group.
		b.WriteString(lineSeparator)
		b.WriteString(subMeshGroupLabel + "0" + lineSeparator)
		for _, t := range sm.Triangles {
			b.WriteString(markerFace)
			for _, idx := range t {
				s := strconv.FormatUint(uint64(idx), 10)
				b.WriteString(" " + s + "//" + s)
			}
			b.WriteString(lineSeparator)
		}
	}
	return []byte(b.String())
}

func writeVec3(b *strings.Builder, marker string, v math.Vec3) {
	b.WriteString(marker)
	b.WriteString(" " + FormatFloat(v.X))
	b.WriteString(" " + FormatFloat(v.Y))
	b.WriteString(" " + FormatFloat(v.Z))
	b.WriteString(lineSeparator)
}

// pendingSubMesh accumulates records until a sub-mesh is completed.
type pendingSubMesh struct {
	name      string
	vertices  []math.Vec3
	normals   []math.Vec3
	triangles []Triangle
}

func (p *pendingSubMesh) hasGeometry() bool {
	return len(p.vertices) > 0 || len(p.normals) > 0 || len(p.triangles) > 0
}

// meshDecoder carries the state of a single DecodeMesh call.
type meshDecoder struct {
	opts    MeshOptions
	doc     *MeshDocument
	pending pendingSubMesh
}

// DecodeMesh parses the room mesh text format.
//
// Lines are scanned once, in order. Blank and unknown lines are ignored.
// Numeric fields that fail to parse read as 0; a marker line with too few
// fields returns ErrMalformedRecord.
func DecodeMesh(data []byte, opts *MeshOptions) (*MeshDocument, error) {
	d := &meshDecoder{doc: &MeshDocument{}}
	if opts != nil {
		d.opts = *opts
	}

	lines := SplitLines(string(data))
	for i := 0; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case markerObject:
			if d.opts.Completion == CompleteOnObject && d.pending.hasGeometry() {
				if err := d.complete(); err != nil {
					return nil, err
				}
			}
			// Geometry without faces is dropped here in CompleteOnFaces mode.
			d.pending = pendingSubMesh{name: objectName(lines[i])}

		case markerVertex, markerNormal:
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: %q needs 3 coordinates", ErrMalformedRecord, i+1, fields[0])
			}
			v := math.Vec3{
				X: ParseFloatOrZero(fields[1]),
				Y: ParseFloatOrZero(fields[2]),
				Z: ParseFloatOrZero(fields[3]),
			}
			if fields[0] == markerVertex {
				d.pending.vertices = append(d.pending.vertices, v)
			} else {
				d.pending.normals = append(d.pending.normals, v)
			}

		case markerFace:
			// Consume the whole run of face lines, then step back so the
			// loop reprocesses the line that ended it.
			for ; i < len(lines); i++ {
				fields = strings.Fields(lines[i])
				if len(fields) == 0 || fields[0] != markerFace {
					break
				}
				tri, err := parseFace(fields, i+1)
				if err != nil {
					return nil, err
				}
				d.pending.triangles = append(d.pending.triangles, tri)
			}
			i--

			if err := d.complete(); err != nil {
				return nil, err
			}
		}
	}

	if d.opts.Completion == CompleteOnObject && d.pending.hasGeometry() {
		if err := d.complete(); err != nil {
			return nil, err
		}
	}

	return d.doc, nil
}

// objectName returns the rest of an object line after the marker and its
// single delimiter. Further spaces belong to the name.
func objectName(line string) string {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimLeft(line, " \t")
	line = strings.TrimPrefix(line, markerObject)
	if line != "" && (line[0] == ' ' || line[0] == '\t') {
		line = line[1:]
	}
	return line
}

// parseFace reads "f a/.. b/.. c/..", keeping the first index of each field.
// Fields past the third are ignored.
func parseFace(fields []string, lineNo int) (Triangle, error) {
	if len(fields) < 4 {
		return Triangle{}, fmt.Errorf("%w: line %d: face needs 3 vertices, got %d", ErrMalformedRecord, lineNo, len(fields)-1)
	}
	var tri Triangle
	for k := 0; k < 3; k++ {
		idx, _, _ := strings.Cut(fields[k+1], "/")
		tri[k] = ParseIndexOrZero(idx)
	}
	return tri, nil
}

// complete moves the pending geometry into the document and resets the
// accumulator. The next sub-mesh is unnamed until an object marker is seen.
func (d *meshDecoder) complete() error {
	index := len(d.doc.SubMeshes)
	placement, err := d.opts.Orientation.placement(index)
	if err != nil {
		return err
	}

	d.doc.SubMeshes = append(d.doc.SubMeshes, SubMesh{
		Name:      d.pending.name,
		Vertices:  d.pending.vertices,
		Normals:   d.pending.normals,
		Triangles: d.pending.triangles,
		Placement: placement,
	})
	d.pending = pendingSubMesh{}
	return nil
}
