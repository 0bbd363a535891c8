// Package grid provides the square lattice the customer population lives on.
// Adjacency is the 8-connected Moore neighborhood, clipped at the borders
// (no wraparound), so edge and corner cells have fewer neighbors. The
// lattice is fixed for the lifetime of a run.
package grid

import "math"

// Coord is a fixed cell position on the lattice.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a side × side lattice with precomputed Moore adjacency.
type Grid struct {
	Side      int
	neighbors [][]int
}

// SideFor returns the lattice side length implied by a requested population:
// the nearest integer to sqrt(population). The effective population is the
// square of this value.
func SideFor(population int) int {
	if population < 1 {
		return 0
	}
	return int(math.Round(math.Sqrt(float64(population))))
}

// New builds a lattice sized to the requested population.
func New(population int) *Grid {
	g := &Grid{Side: SideFor(population)}
	g.buildNeighbors()
	return g
}

// Cells returns the number of cells (and therefore customers) on the grid.
func (g *Grid) Cells() int {
	return g.Side * g.Side
}

// Index maps a coordinate to its row-major cell index.
func (g *Grid) Index(x, y int) int {
	return y*g.Side + x
}

// CoordOf maps a row-major cell index back to its coordinate.
func (g *Grid) CoordOf(i int) Coord {
	return Coord{X: i % g.Side, Y: i / g.Side}
}

// Neighbors returns the precomputed Moore adjacency for a cell index.
// The returned slice is shared; callers must not modify it.
func (g *Grid) Neighbors(i int) []int {
	return g.neighbors[i]
}

func (g *Grid) buildNeighbors() {
	g.neighbors = make([][]int, g.Cells())
	for y := 0; y < g.Side; y++ {
		for x := 0; x < g.Side; x++ {
			i := g.Index(x, y)
			adj := make([]int, 0, 8)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= g.Side || ny < 0 || ny >= g.Side {
						continue
					}
					adj = append(adj, g.Index(nx, ny))
				}
			}
			g.neighbors[i] = adj
		}
	}
}
