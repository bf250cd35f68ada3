package room

import (
	"fmt"

	"github.com/Faultbox/roomtex/pkg/math"
)

// Severity ranks a validation issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a short severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Issue is one finding of Validate.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return i.Severity.String() + ": " + i.Message
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// unitTolerance bounds how far a normal or rotation may be from unit length
// after a float32 round trip through text.
const unitTolerance = 1e-3

func countNonUnit(vs []math.Vec3) int {
	n := 0
	for _, v := range vs {
		if !v.ApproxEqual(v.Normalize(), unitTolerance) {
			n++
		}
	}
	return n
}

// Validate checks the cardinality contracts the file formats leave to the
// caller. Errors mark packages that cannot be assembled into a room;
// warnings mark data that will be partly ignored.
func (p *Package) Validate() []Issue {
	var issues []Issue
	add := func(sev Severity, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	subMeshes := len(p.Mesh.SubMeshes)
	if subMeshes == 0 {
		add(SeverityError, "mesh has no complete sub-meshes")
	}

	m := p.Matrices
	if n := len(m.Model); n > 0 && n != subMeshes {
		add(SeverityError, "%d model matrices for %d sub-meshes", n, subMeshes)
	}
	if len(m.View) != len(m.Projection) {
		add(SeverityWarning, "%d view matrices but %d projection matrices", len(m.View), len(m.Projection))
	}
	if len(p.Layers) > 0 && len(p.Layers) != len(m.View) {
		add(SeverityWarning, "%d photo layers for %d view matrices", len(p.Layers), len(m.View))
	}

	if o := p.Orientation; !o.Empty() {
		if len(o.Positions) > 0 && len(o.Rotations) > 0 && len(o.Positions) != len(o.Rotations) {
			add(SeverityWarning, "%d positions but %d rotations", len(o.Positions), len(o.Rotations))
		}
		if len(o.Positions) > subMeshes || len(o.Rotations) > subMeshes {
			add(SeverityWarning, "placements exceed the %d sub-meshes", subMeshes)
		}
		for i, q := range o.Rotations {
			if !q.ApproxEqual(q.Normalize(), unitTolerance) {
				add(SeverityWarning, "rotation %d %v is not a unit quaternion", i, q)
			}
		}
	}

	for i := range p.Mesh.SubMeshes {
		sm := &p.Mesh.SubMeshes[i]
		if len(sm.Normals) > 0 && len(sm.Normals) != len(sm.Vertices) {
			add(SeverityWarning, "sub-mesh %d (%q): %d normals for %d vertices", i, sm.Name, len(sm.Normals), len(sm.Vertices))
		}
		if n := countNonUnit(sm.Normals); n > 0 {
			add(SeverityWarning, "sub-mesh %d (%q): %d normals are not unit length", i, sm.Name, n)
		}

		degenerate := 0
		for _, t := range sm.Triangles {
			if max(t[0], t[1], t[2]) >= uint32(len(sm.Vertices)) {
				add(SeverityWarning, "sub-mesh %d (%q): triangle %v references a missing vertex", i, sm.Name, t)
				break
			}
			a, b, c := sm.Vertices[t[0]], sm.Vertices[t[1]], sm.Vertices[t[2]]
			if b.Sub(a).Cross(c.Sub(a)).Length() == 0 {
				degenerate++
			}
		}
		if degenerate > 0 {
			add(SeverityWarning, "sub-mesh %d (%q): %d degenerate triangles", i, sm.Name, degenerate)
		}
	}

	return issues
}
