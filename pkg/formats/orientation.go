package formats

import (
	"fmt"
	"strings"

	"github.com/Faultbox/roomtex/pkg/math"
)

// Supplementary info section labels.
const (
	PositionsLabel = "MeshPositions"
	RotationsLabel = "MeshRotations"
)

// Placement positions and orients one sub-mesh. It is an alternative to the
// sub-mesh's model matrix; files use one or the other.
type Placement struct {
	Position math.Vec3
	Rotation math.Quat
}

// Matrix returns the local-to-world matrix described by the placement.
func (p Placement) Matrix() math.Mat4 {
	return math.TRS(p.Position, p.Rotation, math.Vec3{X: 1, Y: 1, Z: 1})
}

// Orientation holds per-sub-mesh positions and rotations as parallel arrays.
type Orientation struct {
	Positions []math.Vec3
	Rotations []math.Quat
}

// Empty reports whether neither array has entries.
func (o *Orientation) Empty() bool {
	return o == nil || (len(o.Positions) == 0 && len(o.Rotations) == 0)
}

// Entry returns the placement at index i. A missing rotation array yields
// identity and a missing position array yields the origin, but an array
// that is present and too short returns ErrIndexOutOfRange.
func (o *Orientation) Entry(i int) (Placement, error) {
	p := Placement{Rotation: math.QuatIdentity()}
	if o == nil {
		return p, nil
	}
	if len(o.Positions) > 0 {
		if i >= len(o.Positions) {
			return Placement{}, fmt.Errorf("%w: position %d of %d", ErrIndexOutOfRange, i, len(o.Positions))
		}
		p.Position = o.Positions[i]
	}
	if len(o.Rotations) > 0 {
		if i >= len(o.Rotations) {
			return Placement{}, fmt.Errorf("%w: rotation %d of %d", ErrIndexOutOfRange, i, len(o.Rotations))
		}
		p.Rotation = o.Rotations[i]
	}
	return p, nil
}

// placement is Entry for the mesh decoder: nil when there is nothing to assign.
func (o *Orientation) placement(i int) (*Placement, error) {
	if o.Empty() {
		return nil, nil
	}
	p, err := o.Entry(i)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeOrientation writes the supplementary info format: a positions
// section followed by a rotations section, one separator per record.
func EncodeOrientation(o *Orientation) []byte {
	var b strings.Builder

	writeSectionHeader(&b, PositionsLabel)
	for _, p := range o.Positions {
		b.WriteString(sectionSeparator + lineSeparator)
		b.WriteString(FormatFloat(p.X) + " " + FormatFloat(p.Y) + " " + FormatFloat(p.Z) + lineSeparator)
	}

	writeSectionHeader(&b, RotationsLabel)
	for _, q := range o.Rotations {
		b.WriteString(sectionSeparator + lineSeparator)
		b.WriteString(FormatFloat(q.X) + " " + FormatFloat(q.Y) + " " + FormatFloat(q.Z) + " " + FormatFloat(q.W) + lineSeparator)
	}

	return []byte(b.String())
}

func writeSectionHeader(b *strings.Builder, label string) {
	b.WriteString(sectionSeparator + lineSeparator)
	b.WriteString(label + lineSeparator)
}

// orientationMode is the section the decoder is currently filling.
type orientationMode int

const (
	// Records seen before any label are read as rotations.
	modeRotations orientationMode = iota
	modePositions
)

// DecodeOrientation parses the supplementary info format.
//
// After each separator the next line is either a section label or a record.
// The current section sticks until another label appears, so a file that
// never labels its rotations reads every record as a position. Missing or
// unparsable fields read as 0.
func DecodeOrientation(data []byte) *Orientation {
	o := &Orientation{}
	mode := modeRotations

	lines := SplitLines(string(data))
	for i := 0; i < len(lines); i++ {
		if !strings.Contains(lines[i], sectionSeparator) {
			continue
		}
		i++
		if i >= len(lines) {
			break
		}

		line := strings.TrimRight(lines[i], " \t\r")
		switch {
		case strings.Contains(line, PositionsLabel):
			mode = modePositions
		case strings.Contains(line, RotationsLabel):
			mode = modeRotations
		default:
			fields := strings.Split(line, " ")
			if mode == modePositions {
				o.Positions = append(o.Positions, math.Vec3{
					X: ParseFloatOrZero(fieldOrEmpty(fields, 0)),
					Y: ParseFloatOrZero(fieldOrEmpty(fields, 1)),
					Z: ParseFloatOrZero(fieldOrEmpty(fields, 2)),
				})
			} else {
				o.Rotations = append(o.Rotations, math.Quat{
					X: ParseFloatOrZero(fieldOrEmpty(fields, 0)),
					Y: ParseFloatOrZero(fieldOrEmpty(fields, 1)),
					Z: ParseFloatOrZero(fieldOrEmpty(fields, 2)),
					W: ParseFloatOrZero(fieldOrEmpty(fields, 3)),
				})
			}
		}
	}

	return o
}
