package domain

// Rect is an axis-aligned rectangle in feet.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PlanRoom is a placed room rectangle within the plan outline.
type PlanRoom struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	AreaFt2 float64 `json:"area_ft2"`
	RectFt  Rect    `json:"rect_ft"`
}

// Edge kinds in a plan graph.
const (
	EdgeAdjacent    = "adjacent"
	EdgeCirculation = "circulation"
)

// PlanEdge links two placed rooms.
type PlanEdge struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Kind string `json:"kind"`
}

// PlanGraph is the deterministic 2-D layout derived from a HouseSpec:
// a fixed outline, packed room rectangles and an adjacency graph.
type PlanGraph struct {
	Version   string     `json:"version"`
	OutlineFt Rect       `json:"outline_ft"`
	Rooms     []PlanRoom `json:"rooms"`
	Edges     []PlanEdge `json:"edges"`
	Warnings  []string   `json:"warnings"`
}

// FindRoom returns the first placed room of the given type, or nil.
func (p *PlanGraph) FindRoom(roomType string) *PlanRoom {
	for i := range p.Rooms {
		if p.Rooms[i].Type == roomType {
			return &p.Rooms[i]
		}
	}
	return nil
}
