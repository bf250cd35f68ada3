package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomtex/pkg/math"
)

// createTestMatrixSet builds a set with distinguishable matrices.
func createTestMatrixSet(photos, subMeshes int) *MatrixSet {
	set := &MatrixSet{}
	for i := 0; i < photos; i++ {
		set.View = append(set.View, math.Translate(float32(i), -2.5, 0.125))
		set.Projection = append(set.Projection, math.Scale(1.5, float32(i)+0.3, -1))
	}
	for i := 0; i < subMeshes; i++ {
		set.Model = append(set.Model, math.TRS(
			math.Vec3{X: float32(i), Y: 1, Z: 2},
			math.Quat{Y: float32(i) * 0.125, W: 1},
			math.Vec3{X: 1, Y: 1, Z: 1},
		))
	}
	return set
}

func TestDecodeMatrices_Identity(t *testing.T) {
	text := "===\nWorldToCameraMatrices\n===\n" +
		"1\t0\t0\t0\n" +
		"0\t1\t0\t0\n" +
		"0\t0\t1\t0\n" +
		"0\t0\t0\t1\n"

	set, err := DecodeMatrices([]byte(text))
	require.NoError(t, err)
	require.Len(t, set.View, 1)
	assert.Equal(t, math.Identity(), set.View[0])
	assert.Empty(t, set.Projection)
	assert.Empty(t, set.Model)
}

func TestEncodeMatrices_Layout(t *testing.T) {
	set := &MatrixSet{
		View:  []math.Mat4{math.Translate(1, 2, 3)},
		Model: []math.Mat4{math.Identity()},
	}

	want := "===\nWorldToCameraMatrices\n" +
		"===\nProjectorMatrices\n" +
		"===\nLocalToWorldMatrices\n" +
		"===\n" +
		"1\t0\t0\t0\n" +
		"0\t1\t0\t0\n" +
		"0\t0\t1\t0\n" +
		"0\t0\t0\t1\n"

	// No projection matrices, so the photo count clamps to zero.
	assert.Equal(t, want, string(EncodeMatrices(set, 1)))
}

func TestEncodeMatrices_RowOrder(t *testing.T) {
	set := &MatrixSet{View: []math.Mat4{math.Translate(1, 2, 3)}, Projection: []math.Mat4{math.Identity()}}

	lines := SplitLines(string(EncodeMatrices(set, 1)))
	// Translation sits in the last column of each row.
	assert.Equal(t, "1\t0\t0\t1", lines[3])
	assert.Equal(t, "0\t1\t0\t2", lines[4])
	assert.Equal(t, "0\t0\t1\t3", lines[5])
	assert.Equal(t, "0\t0\t0\t1", lines[6])
}

func TestMatricesRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		photos     int
		subMeshes  int
		photoCount int
		wantPhotos int
	}{
		{"all photos", 3, 2, 3, 3},
		{"partial photos", 4, 1, 2, 2},
		{"photo count clamped", 2, 3, 10, 2},
		{"negative photo count", 2, 1, -1, 0},
		{"empty", 0, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := createTestMatrixSet(tc.photos, tc.subMeshes)

			decoded, err := DecodeMatrices(EncodeMatrices(set, tc.photoCount))
			require.NoError(t, err)

			require.Len(t, decoded.View, tc.wantPhotos)
			require.Len(t, decoded.Projection, tc.wantPhotos)
			require.Len(t, decoded.Model, tc.subMeshes)
			for i := 0; i < tc.wantPhotos; i++ {
				assert.Equal(t, set.View[i], decoded.View[i], "view %d", i)
				assert.Equal(t, set.Projection[i], decoded.Projection[i], "projection %d", i)
			}
			for i := range set.Model {
				assert.Equal(t, set.Model[i], decoded.Model[i], "model %d", i)
			}
		})
	}
}

func TestDecodeMatrices_NumericFallback(t *testing.T) {
	text := "===\nProjectorMatrices\n===\n" +
		"abc\t2\t3\t4\n" +
		"5\t\t7\t8\n" +
		"9\t10\n" +
		"13\t14\t15\t16\t17\n"

	set, err := DecodeMatrices([]byte(text))
	require.NoError(t, err)
	require.Len(t, set.Projection, 1)

	m := set.Projection[0]
	assert.Equal(t, [4]float32{0, 2, 3, 4}, m.Row(0))
	assert.Equal(t, [4]float32{5, 0, 7, 8}, m.Row(1))
	assert.Equal(t, [4]float32{9, 10, 0, 0}, m.Row(2))
	assert.Equal(t, [4]float32{13, 14, 15, 16}, m.Row(3))
}

func TestDecodeMatrices_LabelMatchedBySubstring(t *testing.T) {
	text := "===\n# LocalToWorldMatrices (room)\n===\n" +
		"1\t0\t0\t0\n0\t1\t0\t0\n0\t0\t1\t0\n0\t0\t0\t1\n"

	set, err := DecodeMatrices([]byte(text))
	require.NoError(t, err)
	assert.Len(t, set.Model, 1)
}

func TestDecodeMatrices_RecordsBeforeLabelDiscarded(t *testing.T) {
	text := "===\n1\t0\t0\t0\n0\t1\t0\t0\n0\t0\t1\t0\n0\t0\t0\t1\n" +
		"===\nWorldToCameraMatrices\n"

	set, err := DecodeMatrices([]byte(text))
	require.NoError(t, err)
	assert.Empty(t, set.View)
	assert.Empty(t, set.Projection)
	assert.Empty(t, set.Model)
}

func TestDecodeMatrices_TruncatedRecord(t *testing.T) {
	text := "===\nWorldToCameraMatrices\n===\n1\t0\t0\t0\n0\t1\t0\t0"

	_, err := DecodeMatrices([]byte(text))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDecodeMatrices_TrailingSeparator(t *testing.T) {
	set, err := DecodeMatrices([]byte("===\nWorldToCameraMatrices\n==="))
	require.NoError(t, err)
	assert.Empty(t, set.View)
}

func TestDecodeMatrices_CRLF(t *testing.T) {
	text := "===\r\nWorldToCameraMatrices\r\n===\r\n" +
		"1\t0\t0\t0\r\n0\t1\t0\t0\r\n0\t0\t1\t0\r\n0\t0\t0\t1\r\n"

	set, err := DecodeMatrices([]byte(text))
	require.NoError(t, err)
	require.Len(t, set.View, 1)
	assert.Equal(t, math.Identity(), set.View[0])
}

func TestMatrixSet_PhotoCount(t *testing.T) {
	set := createTestMatrixSet(3, 1)
	set.Projection = set.Projection[:2]

	tests := []struct {
		n, want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{10, 2},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, set.PhotoCount(tc.n), "n=%d", tc.n)
	}

	decoded, err := DecodeMatrices(EncodeMatrices(set, 3))
	require.NoError(t, err)
	assert.Len(t, decoded.View, 2)
	assert.Len(t, decoded.Projection, 2)
}
