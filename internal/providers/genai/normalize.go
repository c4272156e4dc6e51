package genai

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"drafted/internal/domain"
)

const (
	minRoomCount = 1
	maxRoomCount = 10
)

// normalizeSpec turns a parsed provider payload into a valid HouseSpec:
// counts clamped to [1,10], areas clamped to [20,2000], rooms without a
// name/type/area dropped, missing ids generated. A payload that yields
// zero usable rooms falls back to the deterministic spec, and mandatory
// room types plus requested bedroom/bathroom counts are backfilled so the
// validation gate downstream has a chance to pass.
func normalizeSpec(raw specPayload, req SpecRequest) *domain.HouseSpec {
	style := strings.TrimSpace(raw.Style)
	if style == "" {
		style = req.Style
	}
	bedrooms := clampCount(raw.Bedrooms, req.Bedrooms)
	bathrooms := clampCount(raw.Bathrooms, req.Bathrooms)

	var rooms []domain.Room
	for _, r := range raw.Rooms {
		if r.Type == "" || r.Name == "" || r.AreaFt2 == nil || *r.AreaFt2 <= 0 {
			continue
		}
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		rooms = append(rooms, domain.Room{
			ID:      id,
			Type:    r.Type,
			Name:    r.Name,
			AreaFt2: clampFloat(*r.AreaFt2, domain.MinRoomAreaFt2, domain.MaxRoomAreaFt2),
		})
	}
	if len(rooms) == 0 {
		return fallbackSpec(req)
	}

	rooms = ensureMinimumRooms(rooms, bedrooms, bathrooms)

	var notes []string
	for _, n := range raw.Notes {
		if s, ok := n.(string); ok {
			notes = append(notes, s)
		}
	}

	return &domain.HouseSpec{
		Version:   specVersion,
		Style:     style,
		Bedrooms:  bedrooms,
		Bathrooms: bathrooms,
		Rooms:     rooms,
		Notes:     notes,
	}
}

// fallbackSpec is the deterministic no-credential spec: a fixed public
// core scaled by the requested bedroom/bathroom counts, with the style
// inferred from prompt keywords.
func fallbackSpec(req SpecRequest) *domain.HouseSpec {
	style := inferStyle(req.Prompt, req.Style)
	rooms := []domain.Room{
		{ID: uuid.NewString(), Type: domain.RoomLiving, Name: "Great Room", AreaFt2: 320},
		{ID: uuid.NewString(), Type: domain.RoomKitchen, Name: "Kitchen", AreaFt2: 220},
		{ID: uuid.NewString(), Type: domain.RoomDining, Name: "Dining", AreaFt2: 160},
		{ID: uuid.NewString(), Type: domain.RoomLaundry, Name: "Laundry", AreaFt2: 70},
		{ID: uuid.NewString(), Type: domain.RoomBedroom, Name: "Primary Bedroom", AreaFt2: 240},
	}
	for i := 0; i < req.Bedrooms-1; i++ {
		rooms = append(rooms, domain.Room{
			ID:      uuid.NewString(),
			Type:    domain.RoomBedroom,
			Name:    fmt.Sprintf("Bedroom %d", i+2),
			AreaFt2: 150,
		})
	}
	for i := 0; i < req.Bathrooms; i++ {
		rooms = append(rooms, domain.Room{
			ID:      uuid.NewString(),
			Type:    domain.RoomBathroom,
			Name:    fmt.Sprintf("Bathroom %d", i+1),
			AreaFt2: 70,
		})
	}
	return &domain.HouseSpec{
		Version:   specVersion,
		Style:     style,
		Bedrooms:  req.Bedrooms,
		Bathrooms: req.Bathrooms,
		Rooms:     rooms,
		Notes: []string{
			"Fallback spec used because GEMINI_API_KEY is not configured.",
			"Set GEMINI_API_KEY to force provider-backed structured output.",
			fmt.Sprintf("Style: %s.", StyleLabel(style)),
		},
	}
}

func inferStyle(prompt, defaultStyle string) string {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "farmhouse"):
		return "modern_farmhouse"
	case strings.Contains(p, "hill country"):
		return "hill_country"
	case strings.Contains(p, "midcentury"), strings.Contains(p, "mid-century"):
		return "midcentury_modern"
	case strings.Contains(p, "contemporary"):
		return "contemporary"
	default:
		return defaultStyle
	}
}

// StyleLabel renders a style tag as a human-readable label, e.g.
// "modern_farmhouse" -> "Modern Farmhouse".
func StyleLabel(style string) string {
	c := cases.Title(language.English)
	return c.String(strings.ReplaceAll(style, "_", " "))
}

func ensureMinimumRooms(rooms []domain.Room, bedrooms, bathrooms int) []domain.Room {
	has := func(roomType string) bool {
		for _, r := range rooms {
			if r.Type == roomType {
				return true
			}
		}
		return false
	}
	if !has(domain.RoomLiving) {
		rooms = append(rooms, domain.Room{ID: uuid.NewString(), Type: domain.RoomLiving, Name: "Living Room", AreaFt2: 260})
	}
	if !has(domain.RoomKitchen) {
		rooms = append(rooms, domain.Room{ID: uuid.NewString(), Type: domain.RoomKitchen, Name: "Kitchen", AreaFt2: 180})
	}
	if !has(domain.RoomDining) {
		rooms = append(rooms, domain.Room{ID: uuid.NewString(), Type: domain.RoomDining, Name: "Dining", AreaFt2: 140})
	}

	count := func(roomType string) int {
		n := 0
		for _, r := range rooms {
			if r.Type == roomType {
				n++
			}
		}
		return n
	}
	for i := count(domain.RoomBedroom); i < bedrooms; i++ {
		name := fmt.Sprintf("Bedroom %d", i+1)
		if i == 0 {
			name = "Primary Bedroom"
		}
		rooms = append(rooms, domain.Room{ID: uuid.NewString(), Type: domain.RoomBedroom, Name: name, AreaFt2: 130})
	}
	for i := count(domain.RoomBathroom); i < bathrooms; i++ {
		rooms = append(rooms, domain.Room{ID: uuid.NewString(), Type: domain.RoomBathroom, Name: fmt.Sprintf("Bathroom %d", i+1), AreaFt2: 60})
	}
	return rooms
}

func clampCount(v *float64, fallback int) int {
	n := fallback
	if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
		n = int(math.Round(*v))
	}
	if n < minRoomCount {
		return minRoomCount
	}
	if n > maxRoomCount {
		return maxRoomCount
	}
	return n
}

func clampFloat(n, min, max float64) float64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
