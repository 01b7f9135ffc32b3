package entity

import (
	"github.com/google/uuid"
)

type ListingCategory string

const (
	CategoryFoodTruck    ListingCategory = "food_truck"
	CategoryTrailer      ListingCategory = "trailer"
	CategoryGhostKitchen ListingCategory = "ghost_kitchen"
	CategoryVendorLot    ListingCategory = "vendor_lot"
)

type Listing struct {
	BaseNoDelete
	HostID      uuid.UUID       `db:"host_id"`
	Title       string          `db:"title"`
	Description *string         `db:"description"`
	Category    ListingCategory `db:"category"`
	City        string          `db:"city"`
	DailyRate   float64         `db:"daily_rate"`
	WeeklyRate  *float64        `db:"weekly_rate"`
	InstantBook bool            `db:"instant_book"`
	IsActive    bool            `db:"is_active"`
}
