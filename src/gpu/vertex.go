package gpu

import (
	"unsafe"

	"github.com/vulkan-go/vulkan"
)

type Vertex struct {
	Pos   [2]float32
	Color [3]float32
}

// Quad is a centered square with one color per corner, drawn as two
// triangles through QuadIndices.
var (
	QuadVertices = []Vertex{
		{Pos: [2]float32{-0.5, -0.5}, Color: [3]float32{1, 0, 0}},
		{Pos: [2]float32{0.5, -0.5}, Color: [3]float32{0, 1, 0}},
		{Pos: [2]float32{0.5, 0.5}, Color: [3]float32{0, 0, 1}},
		{Pos: [2]float32{-0.5, 0.5}, Color: [3]float32{1, 1, 1}},
	}
	QuadIndices = []uint16{0, 1, 2, 2, 3, 0}
)

func vertexBinding() vulkan.VertexInputBindingDescription {
	return vulkan.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vulkan.VertexInputRateVertex,
	}
}

func vertexAttributes() []vulkan.VertexInputAttributeDescription {
	return []vulkan.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vulkan.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vulkan.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}
