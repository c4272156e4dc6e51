// Package layout turns a validated house spec into a deterministic 2-D
// floor plan: packed room rectangles inside a fixed outline plus an
// adjacency graph. It is pure computation with no I/O.
package layout

import (
	"github.com/google/uuid"

	"drafted/internal/domain"
)

// Outline and column geometry in feet. The plan is a single-story
// rectangle split into a public zone (left column) and a private zone
// (right column).
const (
	OutlineWidthFt  = 52.0
	OutlineHeightFt = 34.0
	publicColumnFt  = 32.0
	privateColumnFt = OutlineWidthFt - publicColumnFt

	publicMinHeightFt  = 8.0
	publicMaxHeightFt  = 14.0
	privateMinHeightFt = 6.0
	privateMaxHeightFt = 12.0

	minHallHeightFt = 4.0

	planVersion = "1.0"
)

var (
	publicTypes  = map[string]bool{domain.RoomLiving: true, domain.RoomKitchen: true, domain.RoomDining: true}
	privateTypes = map[string]bool{domain.RoomBedroom: true, domain.RoomBathroom: true, domain.RoomLaundry: true}
)

// GeneratePlanGraph packs the spec's rooms into the outline. Packing is
// best-effort: each column is filled top to bottom and rooms that no
// longer fit are dropped rather than reported as errors. Rooms of types
// outside the public/private sets are excluded from placement.
func GeneratePlanGraph(spec *domain.HouseSpec) *domain.PlanGraph {
	plan := &domain.PlanGraph{
		Version:   planVersion,
		OutlineFt: domain.Rect{X: 0, Y: 0, W: OutlineWidthFt, H: OutlineHeightFt},
		Rooms:     []domain.PlanRoom{},
		Edges:     []domain.PlanEdge{},
		Warnings:  []string{},
	}

	publicRooms := filterRooms(spec.Rooms, publicTypes)
	if len(publicRooms) == 0 {
		plan.Warnings = append(plan.Warnings, "No public rooms in spec; added a default Great Room.")
		publicRooms = []domain.Room{{
			ID:      uuid.NewString(),
			Type:    domain.RoomLiving,
			Name:    "Great Room",
			AreaFt2: 320,
		}}
	}

	y := 0.0
	for _, r := range publicRooms {
		h := clamp(r.AreaFt2/publicColumnFt, publicMinHeightFt, publicMaxHeightFt)
		if y+h > OutlineHeightFt {
			break
		}
		plan.Rooms = append(plan.Rooms, placed(r, 0, y, publicColumnFt, h))
		y += h
	}

	// Whatever is left of the public column becomes circulation space.
	hallID := ""
	if hallH := OutlineHeightFt - y; hallH >= minHallHeightFt {
		hallID = uuid.NewString()
		plan.Rooms = append(plan.Rooms, domain.PlanRoom{
			ID:      hallID,
			Name:    "Hall",
			Type:    domain.RoomHall,
			AreaFt2: publicColumnFt * hallH,
			RectFt:  domain.Rect{X: 0, Y: y, W: publicColumnFt, H: hallH},
		})
	}

	privateRooms := filterRooms(spec.Rooms, privateTypes)
	if len(privateRooms) == 0 {
		plan.Warnings = append(plan.Warnings, "No private rooms in spec; private zone is empty.")
	}
	y2 := 0.0
	for _, r := range privateRooms {
		h := clamp(r.AreaFt2/privateColumnFt, privateMinHeightFt, privateMaxHeightFt)
		if y2+h > OutlineHeightFt {
			break
		}
		plan.Rooms = append(plan.Rooms, placed(r, publicColumnFt, y2, privateColumnFt, h))
		y2 += h
	}

	living := plan.FindRoom(domain.RoomLiving)
	kitchen := plan.FindRoom(domain.RoomKitchen)
	dining := plan.FindRoom(domain.RoomDining)
	if living != nil && kitchen != nil {
		plan.Edges = append(plan.Edges, domain.PlanEdge{A: living.ID, B: kitchen.ID, Kind: domain.EdgeAdjacent})
	}
	if kitchen != nil && dining != nil {
		plan.Edges = append(plan.Edges, domain.PlanEdge{A: kitchen.ID, B: dining.ID, Kind: domain.EdgeAdjacent})
	}
	if living != nil && dining != nil {
		plan.Edges = append(plan.Edges, domain.PlanEdge{A: living.ID, B: dining.ID, Kind: domain.EdgeAdjacent})
	}
	if firstBed := plan.FindRoom(domain.RoomBedroom); firstBed != nil && hallID != "" {
		plan.Edges = append(plan.Edges, domain.PlanEdge{A: hallID, B: firstBed.ID, Kind: domain.EdgeCirculation})
	}

	return plan
}

func placed(r domain.Room, x, y, w, h float64) domain.PlanRoom {
	return domain.PlanRoom{
		ID:      r.ID,
		Name:    r.Name,
		Type:    r.Type,
		AreaFt2: r.AreaFt2,
		RectFt:  domain.Rect{X: x, Y: y, W: w, H: h},
	}
}

func filterRooms(rooms []domain.Room, types map[string]bool) []domain.Room {
	var out []domain.Room
	for _, r := range rooms {
		if types[r.Type] {
			out = append(out, r)
		}
	}
	return out
}

func clamp(n, min, max float64) float64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
