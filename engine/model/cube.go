package model

// CubeIndexCount is the index count of the cube mesh: 6 faces × 2 triangles × 3.
const CubeIndexCount = 36

// cubeFace is one quad of the cube: four corners counter-clockwise seen from outside.
type cubeFace struct {
	positions [4][3]float32
	normal    [3]float32
	color     [4]float32
}

var cubeFaces = [6]cubeFace{
	{positions: [4][3]float32{{0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}}, normal: [3]float32{1, 0, 0}, color: [4]float32{1, 0, 0, 1}},
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}}, normal: [3]float32{-1, 0, 0}, color: [4]float32{0, 1, 0, 1}},
	{positions: [4][3]float32{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}}, normal: [3]float32{0, 1, 0}, color: [4]float32{0, 0, 1, 1}},
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}}, normal: [3]float32{0, -1, 0}, color: [4]float32{1, 1, 0, 1}},
	{positions: [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}, normal: [3]float32{0, 0, 1}, color: [4]float32{1, 0, 1, 1}},
	{positions: [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}, normal: [3]float32{0, 0, -1}, color: [4]float32{0, 1, 1, 1}},
}

var quadUVs = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// CubeMesh returns the unit cube centered on the origin: 24 vertices (4 per face so each face
// keeps its own normal and color) and 36 counter-clockwise indices.
//
// Returns:
//   - []GPUVertex: the vertices
//   - []uint32: the triangle-list indices
func CubeMesh() ([]GPUVertex, []uint32) {
	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, CubeIndexCount)
	for fi, face := range cubeFaces {
		for ci, pos := range face.positions {
			vertices = append(vertices, GPUVertex{
				Position: pos,
				Normal:   face.normal,
				TexCoord: quadUVs[ci],
				Color:    face.color,
			})
		}
		base := uint32(fi * 4)
		indices = append(indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}
	return vertices, indices
}

// NewCube returns the unit cube as a Model.
//
// Returns:
//   - Model: the cube named "cube"
func NewCube() Model {
	vertices, indices := CubeMesh()
	return NewModel(WithName("cube"), WithMesh(vertices, indices))
}
