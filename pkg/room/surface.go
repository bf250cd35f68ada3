package room

import (
	"fmt"

	"github.com/Faultbox/roomtex/pkg/formats"
	"github.com/Faultbox/roomtex/pkg/math"
)

// Surface pairs a sub-mesh with everything needed to project the photo
// layers onto it: its local-to-world matrix and the per-photo view and
// projection matrices shared by all surfaces.
type Surface struct {
	Name        string
	SubMesh     *formats.SubMesh
	Model       math.Mat4
	Views       []math.Mat4
	Projections []math.Mat4
}

// Surfaces returns one surface per sub-mesh, in document order.
//
// When the package has model matrices, sub-mesh i uses Model[i] and a short
// array returns formats.ErrIndexOutOfRange. Otherwise the sub-mesh's
// placement is used, or identity if it has none.
func (p *Package) Surfaces() ([]Surface, error) {
	models := p.Matrices.Model
	surfaces := make([]Surface, len(p.Mesh.SubMeshes))

	for i := range p.Mesh.SubMeshes {
		sm := &p.Mesh.SubMeshes[i]

		model := math.Identity()
		switch {
		case len(models) > 0:
			if i >= len(models) {
				return nil, fmt.Errorf("%w: model matrix %d of %d", formats.ErrIndexOutOfRange, i, len(models))
			}
			model = models[i]
		case sm.Placement != nil:
			model = sm.Placement.Matrix()
		}

		surfaces[i] = Surface{
			Name:        sm.Name,
			SubMesh:     sm,
			Model:       model,
			Views:       p.Matrices.View,
			Projections: p.Matrices.Projection,
		}
	}

	return surfaces, nil
}

// Bounds returns the world-space axis-aligned bounds of the sub-mesh
// vertices under the model matrix. ok is false when there are no vertices.
func (s Surface) Bounds() (lo, hi math.Vec3, ok bool) {
	if s.SubMesh == nil || len(s.SubMesh.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo = s.Model.TransformVec3(s.SubMesh.Vertices[0])
	hi = lo
	for _, v := range s.SubMesh.Vertices[1:] {
		w := s.Model.TransformVec3(v)
		lo = lo.Min(w)
		hi = hi.Max(w)
	}
	return lo, hi, true
}
