package domain

// Room type identifiers the layout engine understands.
const (
	RoomLiving   = "living"
	RoomKitchen  = "kitchen"
	RoomDining   = "dining"
	RoomBedroom  = "bedroom"
	RoomBathroom = "bathroom"
	RoomLaundry  = "laundry"
	RoomHall     = "hall"
)

// Room area bounds in square feet.
const (
	MinRoomAreaFt2 = 20.0
	MaxRoomAreaFt2 = 2000.0
)

// Room is one entry of a structured house specification.
type Room struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	AreaFt2 float64 `json:"area_ft2"`
}

// HouseSpec is the validated structured design produced from a prompt.
type HouseSpec struct {
	Version   string   `json:"version"`
	Style     string   `json:"style"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms int      `json:"bathrooms"`
	Rooms     []Room   `json:"rooms"`
	Notes     []string `json:"notes"`
}

// CountRooms returns how many rooms of the given type the spec contains.
func (s *HouseSpec) CountRooms(roomType string) int {
	n := 0
	for _, r := range s.Rooms {
		if r.Type == roomType {
			n++
		}
	}
	return n
}

// Validate is the gate between spec generation and layout. The spec must
// carry at least the requested bedroom/bathroom counts and every room needs
// a name, a type and a positive area.
func (s *HouseSpec) Validate(bedrooms, bathrooms int) error {
	if s.CountRooms(RoomBedroom) < bedrooms {
		return ValidationError("bedrooms_mismatch")
	}
	if s.CountRooms(RoomBathroom) < bathrooms {
		return ValidationError("bathrooms_mismatch")
	}
	for _, room := range s.Rooms {
		if room.Name == "" || room.Type == "" || room.AreaFt2 <= 0 {
			return ValidationError("invalid_room")
		}
	}
	return nil
}
