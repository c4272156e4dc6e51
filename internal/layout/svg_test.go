package layout

import (
	"strings"
	"testing"

	"drafted/internal/domain"
)

func TestRenderPlanSVGDimensions(t *testing.T) {
	plan := GeneratePlanGraph(specWithRooms(standardRooms()))
	svg := RenderPlanSVG(plan, DefaultPxPerFt)

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="624" height="408"`) {
		t.Fatalf("unexpected svg header: %s", svg[:100])
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("svg not closed")
	}
	for _, room := range plan.Rooms {
		if !strings.Contains(svg, ">"+room.Name+"</text>") {
			t.Fatalf("room label %q missing from svg", room.Name)
		}
	}
}

func TestRenderPlanSVGEscapesRoomNames(t *testing.T) {
	plan := &domain.PlanGraph{
		Version:   "1.0",
		OutlineFt: domain.Rect{W: OutlineWidthFt, H: OutlineHeightFt},
		Rooms: []domain.PlanRoom{{
			ID:     "x",
			Name:   `A&B<C>"D"`,
			Type:   domain.RoomLiving,
			RectFt: domain.Rect{X: 0, Y: 0, W: 10, H: 10},
		}},
	}
	svg := RenderPlanSVG(plan, DefaultPxPerFt)
	if !strings.Contains(svg, "A&amp;B&lt;C&gt;&quot;D&quot;") {
		t.Fatalf("room name not escaped: %s", svg)
	}
	if strings.Contains(svg, `>A&B<`) {
		t.Fatal("raw markup leaked into svg")
	}
}

func TestRenderPlanSVGDefaultsScale(t *testing.T) {
	plan := GeneratePlanGraph(specWithRooms(standardRooms()))
	if got, want := RenderPlanSVG(plan, 0), RenderPlanSVG(plan, DefaultPxPerFt); got != want {
		t.Fatal("zero scale should fall back to the default")
	}
}
