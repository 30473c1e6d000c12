package model

// RoomType enumerates the room categories the hotel rents out.
type RoomType string

const (
    RoomType2BHK RoomType = "2BHK"
    RoomType3BHK RoomType = "3BHK"
)

// RoomTypes lists the accepted room categories.
var RoomTypes = []RoomType{RoomType2BHK, RoomType3BHK}

// Valid reports whether t is a known room category.
func (t RoomType) Valid() bool {
    for _, v := range RoomTypes {
        if v == t {
            return true
        }
    }
    return false
}

// Room represents a bookable unit as stored in the `Rooms` table.
// A room is either vacant with no current stay or occupied with
// CurrentStay pointing at the booking in residence; the schema
// enforces that pairing with a CHECK constraint.
//
// Fields:
//  RoomID      – primary key supplied by the caller on creation.
//  IsVacant    – true when nobody is assigned.
//  CurrentStay – BookingsID of the active stay (nil when vacant).
//  Type        – room category.
//  Price       – nightly rate.
type Room struct {
    RoomID      int64    `json:"RoomID"`      // Rooms.RoomID
    IsVacant    bool     `json:"isVacant"`    // Rooms.isVacant
    CurrentStay *int64   `json:"currentStay"` // Rooms.currentStay (nullable)
    Type        RoomType `json:"type"`        // Rooms.type
    Price       float64  `json:"price"`       // Rooms.price
}

// RoomPatch holds the optional new values of a room update.  Occupancy
// is not patchable: it changes only through check-in, check-out and
// cancellation.
type RoomPatch struct {
    Type  *RoomType
    Price *float64
}

// Empty reports whether no field is set.
func (p RoomPatch) Empty() bool { return p.Type == nil && p.Price == nil }
