package formats

import (
	"fmt"
	"strings"

	"github.com/Faultbox/roomtex/pkg/math"
)

// Matrix section labels.
const (
	WorldToCameraLabel = "WorldToCameraMatrices"
	ProjectionLabel    = "ProjectorMatrices"
	LocalToWorldLabel  = "LocalToWorldMatrices"
)

// matrixFieldSeparator separates the four fields of a matrix row, on both
// encode and decode.
const matrixFieldSeparator = "\t"

// MatrixSet holds the three transform arrays of a room capture.
type MatrixSet struct {
	// View holds one world-to-camera matrix per captured photo.
	View []math.Mat4
	// Projection holds one camera-to-clip matrix per captured photo.
	Projection []math.Mat4
	// Model holds one local-to-world matrix per sub-mesh.
	Model []math.Mat4
}

// EncodeMatrices writes the matrix file format. Only the first photoCount
// view and projection matrices are written; photoCount is clamped to the
// shorter of the two arrays. Model matrices are always written in full.
func EncodeMatrices(set *MatrixSet, photoCount int) []byte {
	photoCount = set.PhotoCount(photoCount)

	var b strings.Builder
	writeMatrixSection(&b, WorldToCameraLabel, set.View[:photoCount])
	writeMatrixSection(&b, ProjectionLabel, set.Projection[:photoCount])
	writeMatrixSection(&b, LocalToWorldLabel, set.Model)
	return []byte(b.String())
}

// PhotoCount clamps n to the number of photos the set fully describes:
// at least 0 and at most the shorter of View and Projection.
func (s *MatrixSet) PhotoCount(n int) int {
	limit := min(len(s.View), len(s.Projection))
	if n > limit {
		return limit
	}
	if n < 0 {
		return 0
	}
	return n
}

func writeMatrixSection(b *strings.Builder, label string, mats []math.Mat4) {
	writeSectionHeader(b, label)
	for _, m := range mats {
		b.WriteString(sectionSeparator + lineSeparator)
		for r := 0; r < 4; r++ {
			row := m.Row(r)
			for c, v := range row {
				if c > 0 {
					b.WriteString(matrixFieldSeparator)
				}
				b.WriteString(FormatFloat(v))
			}
			b.WriteString(lineSeparator)
		}
	}
}

// matrixTarget is the array the decoder appends records to.
type matrixTarget int

const (
	targetNone matrixTarget = iota
	targetView
	targetProjection
	targetModel
)

// DecodeMatrices parses the matrix file format.
//
// A line containing the separator is followed either by a section label
// (matched by substring) or by a four-line record. Records seen before any
// label are discarded. Rows hold up to four tab-separated fields; missing
// or unparsable fields read as 0 and extra fields are ignored. A record cut
// short by the end of input returns ErrMalformedRecord.
func DecodeMatrices(data []byte) (*MatrixSet, error) {
	set := &MatrixSet{}
	target := targetNone

	lines := SplitLines(string(data))
	for i := 0; i < len(lines); {
		if !strings.Contains(lines[i], sectionSeparator) {
			i++
			continue
		}
		i++
		if i >= len(lines) {
			break
		}

		switch line := lines[i]; {
		case strings.Contains(line, WorldToCameraLabel):
			target = targetView
			i++
		case strings.Contains(line, ProjectionLabel):
			target = targetProjection
			i++
		case strings.Contains(line, LocalToWorldLabel):
			target = targetModel
			i++
		default:
			if i+4 > len(lines) {
				return nil, fmt.Errorf("%w: line %d: matrix needs 4 rows, got %d", ErrMalformedRecord, i+1, len(lines)-i)
			}
			m := parseMatrixRows(lines[i : i+4])
			i += 4

			switch target {
			case targetView:
				set.View = append(set.View, m)
			case targetProjection:
				set.Projection = append(set.Projection, m)
			case targetModel:
				set.Model = append(set.Model, m)
			}
		}
	}

	return set, nil
}

func parseMatrixRows(rows []string) math.Mat4 {
	var values [4][4]float32
	for r, line := range rows {
		fields := strings.Split(strings.TrimRight(line, " \t\r"), matrixFieldSeparator)
		for c := 0; c < 4; c++ {
			values[r][c] = ParseFloatOrZero(fieldOrEmpty(fields, c))
		}
	}
	return math.Mat4FromRows(values)
}
