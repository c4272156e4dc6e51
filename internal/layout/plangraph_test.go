package layout

import (
	"testing"

	"drafted/internal/domain"
)

func specWithRooms(rooms []domain.Room) *domain.HouseSpec {
	return &domain.HouseSpec{
		Version:   "1.0",
		Style:     "modern_farmhouse",
		Bedrooms:  3,
		Bathrooms: 2,
		Rooms:     rooms,
	}
}

func standardRooms() []domain.Room {
	return []domain.Room{
		{ID: "living", Type: domain.RoomLiving, Name: "Living Room", AreaFt2: 320},
		{ID: "kitchen", Type: domain.RoomKitchen, Name: "Kitchen", AreaFt2: 220},
		{ID: "dining", Type: domain.RoomDining, Name: "Dining", AreaFt2: 160},
		{ID: "bed1", Type: domain.RoomBedroom, Name: "Primary Bedroom", AreaFt2: 240},
		{ID: "bed2", Type: domain.RoomBedroom, Name: "Bedroom 2", AreaFt2: 150},
		{ID: "bed3", Type: domain.RoomBedroom, Name: "Bedroom 3", AreaFt2: 150},
		{ID: "bath1", Type: domain.RoomBathroom, Name: "Bathroom 1", AreaFt2: 70},
		{ID: "bath2", Type: domain.RoomBathroom, Name: "Bathroom 2", AreaFt2: 70},
		{ID: "laundry", Type: domain.RoomLaundry, Name: "Laundry", AreaFt2: 70},
	}
}

func TestGeneratePlanGraphRoomsStayInsideOutline(t *testing.T) {
	plan := GeneratePlanGraph(specWithRooms(standardRooms()))
	if len(plan.Rooms) == 0 {
		t.Fatal("expected placed rooms")
	}
	for _, room := range plan.Rooms {
		r := room.RectFt
		if r.X < 0 || r.Y < 0 || r.X+r.W > OutlineWidthFt+1e-9 || r.Y+r.H > OutlineHeightFt+1e-9 {
			t.Fatalf("room %s rect %+v escapes outline", room.Name, r)
		}
	}
}

func TestGeneratePlanGraphColumnsDoNotOverlap(t *testing.T) {
	plan := GeneratePlanGraph(specWithRooms(standardRooms()))
	for i, a := range plan.Rooms {
		for _, b := range plan.Rooms[i+1:] {
			ra, rb := a.RectFt, b.RectFt
			xOverlap := ra.X < rb.X+rb.W && rb.X < ra.X+ra.W
			yOverlap := ra.Y < rb.Y+rb.H && rb.Y < ra.Y+ra.H
			if xOverlap && yOverlap {
				t.Fatalf("rooms %s and %s overlap: %+v vs %+v", a.Name, b.Name, ra, rb)
			}
		}
	}
}

func TestGeneratePlanGraphAdjacencyEdges(t *testing.T) {
	plan := GeneratePlanGraph(specWithRooms(standardRooms()))

	want := map[[2]string]string{
		{"living", "kitchen"}: domain.EdgeAdjacent,
		{"kitchen", "dining"}: domain.EdgeAdjacent,
		{"living", "dining"}:  domain.EdgeAdjacent,
	}
	for _, e := range plan.Edges {
		delete(want, [2]string{e.A, e.B})
	}
	if len(want) != 0 {
		t.Fatalf("missing adjacency edges: %v", want)
	}

	var hall *domain.PlanRoom
	for i := range plan.Rooms {
		if plan.Rooms[i].Type == domain.RoomHall {
			hall = &plan.Rooms[i]
		}
	}
	if hall == nil {
		t.Fatal("expected a hall in the public column")
	}
	found := false
	for _, e := range plan.Edges {
		if e.A == hall.ID && e.B == "bed1" && e.Kind == domain.EdgeCirculation {
			found = true
		}
	}
	if !found {
		t.Fatal("expected circulation edge from hall to first bedroom")
	}
}

func TestGeneratePlanGraphSynthesizesGreatRoom(t *testing.T) {
	rooms := []domain.Room{
		{ID: "bed1", Type: domain.RoomBedroom, Name: "Bedroom", AreaFt2: 150},
	}
	plan := GeneratePlanGraph(specWithRooms(rooms))

	living := plan.FindRoom(domain.RoomLiving)
	if living == nil {
		t.Fatal("expected synthesized living room")
	}
	if living.Name != "Great Room" || living.AreaFt2 != 320 {
		t.Fatalf("unexpected synthesized room: %+v", living)
	}
	if len(plan.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", plan.Warnings)
	}
}

func TestGeneratePlanGraphWarnsOnEmptyPrivateZone(t *testing.T) {
	rooms := []domain.Room{
		{ID: "living", Type: domain.RoomLiving, Name: "Living Room", AreaFt2: 300},
	}
	plan := GeneratePlanGraph(specWithRooms(rooms))
	if len(plan.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", plan.Warnings)
	}
	for _, room := range plan.Rooms {
		if room.Type == domain.RoomBedroom || room.Type == domain.RoomBathroom {
			t.Fatalf("unexpected private room %+v", room)
		}
	}
}

func TestGeneratePlanGraphDropsOverflowRooms(t *testing.T) {
	var rooms []domain.Room
	// Ten big bedrooms cannot all fit a 34ft column at min 6ft each.
	for i := 0; i < 10; i++ {
		rooms = append(rooms, domain.Room{
			ID: string(rune('a' + i)), Type: domain.RoomBedroom, Name: "Bedroom", AreaFt2: 400,
		})
	}
	plan := GeneratePlanGraph(specWithRooms(rooms))

	private := 0
	for _, room := range plan.Rooms {
		if room.Type == domain.RoomBedroom {
			private++
		}
	}
	if private >= 10 {
		t.Fatalf("expected overflow bedrooms to be dropped, placed %d", private)
	}
	// Drops are silent: the only warnings allowed here are zone-level ones.
	if len(plan.Warnings) != 0 {
		t.Fatalf("expected no warnings for dropped rooms, got %v", plan.Warnings)
	}
}

func TestGeneratePlanGraphHallFillsRemainder(t *testing.T) {
	rooms := []domain.Room{
		{ID: "l1", Type: domain.RoomLiving, Name: "Living", AreaFt2: 448},   // 14ft
		{ID: "k1", Type: domain.RoomKitchen, Name: "Kitchen", AreaFt2: 448}, // 14ft
		{ID: "d1", Type: domain.RoomDining, Name: "Dining", AreaFt2: 192},   // clamps to 8ft
	}
	plan := GeneratePlanGraph(specWithRooms(rooms))
	// 14 + 14 + 8 exceeds the 34ft column so dining is dropped; the
	// remaining 6ft becomes the hall.
	for _, room := range plan.Rooms {
		if room.ID == "d1" {
			t.Fatal("expected dining to be dropped")
		}
	}
	hall := plan.FindRoom(domain.RoomHall)
	if hall == nil {
		t.Fatal("expected hall to fill the remaining public column")
	}
	if hall.RectFt.H != 6 {
		t.Fatalf("expected 6ft hall, got %+v", hall.RectFt)
	}
}

func TestGeneratePlanGraphNoHallWhenColumnFull(t *testing.T) {
	rooms := []domain.Room{
		{ID: "l1", Type: domain.RoomLiving, Name: "Living", AreaFt2: 448},   // 14ft
		{ID: "k1", Type: domain.RoomKitchen, Name: "Kitchen", AreaFt2: 384}, // 12ft
		{ID: "d1", Type: domain.RoomDining, Name: "Dining", AreaFt2: 256},   // 8ft
	}
	plan := GeneratePlanGraph(specWithRooms(rooms))
	if hall := plan.FindRoom(domain.RoomHall); hall != nil {
		t.Fatalf("expected no hall in a full column, got %+v", hall)
	}
}
