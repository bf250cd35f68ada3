package formats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomtex/pkg/math"
)

// createTestMeshDocument builds a document with n sub-meshes of one quad each.
func createTestMeshDocument(n int) *MeshDocument {
	doc := &MeshDocument{}
	for i := 0; i < n; i++ {
		off := float32(i) * 10
		doc.SubMeshes = append(doc.SubMeshes, SubMesh{
			Name: "RoomMesh_" + string(rune('0'+i)),
			Vertices: []math.Vec3{
				{X: off, Y: 0, Z: 0},
				{X: off + 1.5, Y: 0, Z: 0},
				{X: off + 1.5, Y: 2.25, Z: -0.125},
				{X: off, Y: 2.25, Z: 1e-7},
			},
			Normals: []math.Vec3{
				{X: 0, Y: 0, Z: 1},
				{X: 0, Y: 0, Z: 1},
				{X: 0, Y: 0.70710677, Z: 0.70710677},
				{X: 0, Y: 0, Z: -1},
			},
			Triangles: []Triangle{{0, 1, 2}, {2, 3, 0}},
		})
	}
	return doc
}

func TestDecodeMesh_SingleSubMesh(t *testing.T) {
	text := "\no FirstPart\nv 1 2 3\nv 4 5 6\n\nf 0//0 1//1 0//1\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	require.Len(t, doc.SubMeshes, 1)

	sm := doc.SubMeshes[0]
	assert.Equal(t, "FirstPart", sm.Name)
	assert.Equal(t, []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, sm.Vertices)
	assert.Empty(t, sm.Normals)
	assert.Equal(t, []Triangle{{0, 1, 0}}, sm.Triangles)
	assert.Nil(t, sm.Placement)
}

func TestEncodeMesh_Layout(t *testing.T) {
	doc := &MeshDocument{SubMeshes: []SubMesh{{
		Name:      "Wall",
		Vertices:  []math.Vec3{{X: 1, Y: 2.5, Z: -3}},
		Normals:   []math.Vec3{{X: 0, Y: 1, Z: 0}},
		Triangles: []Triangle{{0, 0, 0}, {7, 8, 9}},
	}}}

	want := "\n" +
		"o Wall\n" +
		"v 1 2.5 -3\n" +
		"\n" +
		"vn 0 1 0\n" +
		"\n" +
		"\n" +
		"submesh0\n" +
		"f 0//0 0//0 0//0\n" +
		"f 7//7 8//8 9//9\n"

	assert.Equal(t, want, string(EncodeMesh(doc)))
}

func TestMeshRoundTrip(t *testing.T) {
	doc := createTestMeshDocument(3)

	decoded, err := DecodeMesh(EncodeMesh(doc), nil)
	require.NoError(t, err)
	require.Len(t, decoded.SubMeshes, 3)

	for i := range doc.SubMeshes {
		want, got := doc.SubMeshes[i], decoded.SubMeshes[i]
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Vertices, got.Vertices, "sub-mesh %d vertices", i)
		assert.Equal(t, want.Normals, got.Normals, "sub-mesh %d normals", i)
		assert.Equal(t, want.Triangles, got.Triangles, "sub-mesh %d triangles", i)
	}
}

func TestMeshRoundTrip_Idempotent(t *testing.T) {
	first := EncodeMesh(createTestMeshDocument(2))

	decoded, err := DecodeMesh(first, nil)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(EncodeMesh(decoded)))
}

// A sub-mesh is only completed by a run of face records, so trailing
// geometry without faces is dropped.
func TestDecodeMesh_TrailingSubMeshWithoutFacesIsDropped(t *testing.T) {
	text := "o A\nv 1 1 1\nf 0 0 0\no B\nv 2 2 2\nvn 0 1 0\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, doc.Names())
}

func TestDecodeMesh_FacelessSubMeshDiscardedOnNextObject(t *testing.T) {
	text := "o A\nv 1 1 1\no B\nv 2 2 2\nf 0//0 0//0 0//0\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	require.Len(t, doc.SubMeshes, 1)
	assert.Equal(t, "B", doc.SubMeshes[0].Name)
	assert.Equal(t, []math.Vec3{{X: 2, Y: 2, Z: 2}}, doc.SubMeshes[0].Vertices)
}

func TestDecodeMesh_CompleteOnObject(t *testing.T) {
	text := "o A\nv 1 1 1\no B\nv 2 2 2\nf 0 0 0\no C\nv 3 3 3\n"

	doc, err := DecodeMesh([]byte(text), &MeshOptions{Completion: CompleteOnObject})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, doc.Names())
	assert.Empty(t, doc.SubMeshes[0].Triangles)
	assert.Equal(t, []math.Vec3{{X: 3, Y: 3, Z: 3}}, doc.SubMeshes[2].Vertices)
}

func TestDecodeMesh_FaceRunEndsAtNonFaceLine(t *testing.T) {
	// The line ending a face run is reprocessed, so the object marker
	// right after the faces still starts a new sub-mesh.
	text := "o A\nv 0 0 0\nf 0 0 0\nf 1 1 1\no B\nv 1 1 1\nf 2 2 2\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	require.Len(t, doc.SubMeshes, 2)
	assert.Equal(t, []Triangle{{0, 0, 0}, {1, 1, 1}}, doc.SubMeshes[0].Triangles)
	assert.Equal(t, "B", doc.SubMeshes[1].Name)
	assert.Equal(t, []Triangle{{2, 2, 2}}, doc.SubMeshes[1].Triangles)
}

func TestDecodeMesh_SecondFaceRunStartsUnnamedSubMesh(t *testing.T) {
	text := "o A\nv 0 0 0\nsubmesh0\nf 0 0 0\nsubmesh1\nf 1 1 1\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", ""}, doc.Names())
	assert.Empty(t, doc.SubMeshes[1].Vertices)
}

func TestDecodeMesh_NameKeepsRemainderOfLine(t *testing.T) {
	doc, err := DecodeMesh([]byte("o North Wall 2\nf 0 0 0\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "North Wall 2", doc.SubMeshes[0].Name)
}

func TestDecodeMesh_NumericFallback(t *testing.T) {
	doc, err := DecodeMesh([]byte("o A\nv abc 2 3\nf x//1 1 2\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, math.Vec3{X: 0, Y: 2, Z: 3}, doc.SubMeshes[0].Vertices[0])
	assert.Equal(t, Triangle{0, 1, 2}, doc.SubMeshes[0].Triangles[0])
}

func TestDecodeMesh_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"short vertex", "o A\nv 1 2\nf 0 0 0\n"},
		{"short normal", "o A\nvn 1\nf 0 0 0\n"},
		{"short face", "o A\nv 1 2 3\nf 0 0\n"},
		{"short face inside run", "o A\nf 0 0 0\nf 1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeMesh([]byte(tc.text), nil)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestDecodeMesh_Placement(t *testing.T) {
	orient := &Orientation{
		Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		Rotations: []math.Quat{{X: 0, Y: 0, Z: 0, W: 1}, {X: 0, Y: 1, Z: 0, W: 0}},
	}

	doc, err := DecodeMesh(EncodeMesh(createTestMeshDocument(2)), &MeshOptions{Orientation: orient})
	require.NoError(t, err)
	require.Len(t, doc.SubMeshes, 2)

	for i, sm := range doc.SubMeshes {
		require.NotNil(t, sm.Placement, "sub-mesh %d", i)
		assert.Equal(t, orient.Positions[i], sm.Placement.Position)
		assert.Equal(t, orient.Rotations[i], sm.Placement.Rotation)
	}
}

func TestDecodeMesh_PlacementPositionsOnly(t *testing.T) {
	orient := &Orientation{Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}}}

	doc, err := DecodeMesh(EncodeMesh(createTestMeshDocument(1)), &MeshOptions{Orientation: orient})
	require.NoError(t, err)
	assert.Equal(t, math.QuatIdentity(), doc.SubMeshes[0].Placement.Rotation)
}

func TestDecodeMesh_PlacementTooShort(t *testing.T) {
	orient := &Orientation{
		Positions: []math.Vec3{{X: 1}},
		Rotations: []math.Quat{math.QuatIdentity()},
	}

	_, err := DecodeMesh(EncodeMesh(createTestMeshDocument(2)), &MeshOptions{Orientation: orient})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDecodeMesh_EmptyOrientationIgnored(t *testing.T) {
	doc, err := DecodeMesh(EncodeMesh(createTestMeshDocument(1)), &MeshOptions{Orientation: &Orientation{}})
	require.NoError(t, err)
	assert.Nil(t, doc.SubMeshes[0].Placement)
}

func TestDecodeMesh_CRLF(t *testing.T) {
	text := strings.ReplaceAll("o A\nv 1 2 3\nf 0//0 0//0 0//0\n", "\n", "\r\n")

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	require.Len(t, doc.SubMeshes, 1)
	assert.Equal(t, "A", doc.SubMeshes[0].Name)
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, doc.SubMeshes[0].Vertices[0])
}

func TestParseCompletionMode(t *testing.T) {
	for _, mode := range []CompletionMode{CompleteOnFaces, CompleteOnObject} {
		got, err := ParseCompletionMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := ParseCompletionMode("eventually")
	assert.Error(t, err)
}

func TestMeshRoundTrip_NamesKeepSpacing(t *testing.T) {
	doc := createTestMeshDocument(3)
	doc.SubMeshes[0].Name = " padded "
	doc.SubMeshes[1].Name = ""
	doc.SubMeshes[2].Name = "two  spaces"

	decoded, err := DecodeMesh(EncodeMesh(doc), nil)
	require.NoError(t, err)
	assert.Equal(t, doc.Names(), decoded.Names())
}

func TestDecodeMesh_ObjectNameDelimiters(t *testing.T) {
	text := "  o\tTabbed\r\nf 0 0 0\r\no\r\nf 1 1 1\r\n"

	doc, err := DecodeMesh([]byte(text), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tabbed", ""}, doc.Names())
}
