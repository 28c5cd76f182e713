package quadcast

import (
	"encoding/binary"
	"math"
)

// VertexStride is the encoded size of a Vertex: float32x2 position followed
// by float32x4 color.
const VertexStride = 24

// Vertex is one corner of the quad.
type Vertex struct {
	Position Point
	Color    RGBA
}

// Quad is the four vertices drawn as a triangle strip in index order
// 0, 1, 2, 3.
type Quad [4]Vertex

// NewQuad returns the quad covering the whole frame with red, green, blue,
// and yellow corners.
func NewQuad() Quad {
	return Quad{
		{Position: Pt(-1, 1), Color: Red},
		{Position: Pt(1, 1), Color: Green},
		{Position: Pt(-1, -1), Color: Blue},
		{Position: Pt(1, -1), Color: Yellow},
	}
}

// Rotate rotates every vertex position about the origin by angle radians
// and clamps each component to [-1, 1]. Rotations accumulate: the quad is
// modified in place and never reset. Because of the clamp the quad shrinks
// toward a diamond over time.
func (q *Quad) Rotate(angle float64) {
	if angle == 0 {
		return
	}
	m := Rotate(angle)
	for i := range q {
		q[i].Position = m.TransformPoint(q[i].Position).Clamp()
	}
}

// AppendBytes appends the quad in GPU vertex layout (little-endian float32,
// VertexStride bytes per vertex) to buf.
func (q *Quad) AppendBytes(buf []byte) []byte {
	for i := range q {
		v := &q[i]
		for _, f := range [6]float64{
			v.Position.X, v.Position.Y,
			v.Color.R, v.Color.G, v.Color.B, v.Color.A,
		} {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f)))
		}
	}
	return buf
}
