package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	StatusActive  ItemStatus = "Active"
	StatusSold    ItemStatus = "Sold"
	StatusDonated ItemStatus = "Donated"
	StatusLost    ItemStatus = "Lost"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusDonated, StatusLost:
		return true
	}
	return false
}

type WashStatus string

const (
	WashClean WashStatus = "Clean"
	WashDirty WashStatus = "Dirty"
)

func (w WashStatus) Valid() bool {
	return w == WashClean || w == WashDirty
}

// TagKind names one of the many-to-many attributes an item can carry.
type TagKind string

const (
	TagColor    TagKind = "color"
	TagMaterial TagKind = "material"
	TagSeason   TagKind = "season"
	TagOccasion TagKind = "occasion"
	TagPattern  TagKind = "pattern"
)

var TagKinds = []TagKind{TagColor, TagMaterial, TagSeason, TagOccasion, TagPattern}

type ClothingItem struct {
	ID               int64               `json:"id" db:"id"`
	Name             string              `json:"name" db:"name"`
	Brand            *string             `json:"brand,omitempty" db:"brand"`
	CategoryID       *int64              `json:"category_id,omitempty" db:"category_id"`
	SubcategoryID    *int64              `json:"subcategory_id,omitempty" db:"subcategory_id"`
	SizeSystemID     *int64              `json:"size_system_id,omitempty" db:"size_system_id"`
	SizeValueID      *int64              `json:"size_value_id,omitempty" db:"size_value_id"`
	Waist            *float64            `json:"waist,omitempty" db:"waist"`
	Inseam           *float64            `json:"inseam,omitempty" db:"inseam"`
	PurchasePrice    decimal.NullDecimal `json:"purchase_price" db:"purchase_price"`
	PurchaseDate     *time.Time          `json:"purchase_date,omitempty" db:"purchase_date"`
	PurchaseLocation *string             `json:"purchase_location,omitempty" db:"purchase_location"`
	ImageURI         *string             `json:"image_uri,omitempty" db:"image_uri"`
	Notes            *string             `json:"notes,omitempty" db:"notes"`
	Status           ItemStatus          `json:"status" db:"status"`
	WashStatus       WashStatus          `json:"wash_status" db:"wash_status"`
	IsFavorite       bool                `json:"is_favorite" db:"is_favorite"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

type Outfit struct {
	ID        int64     `json:"id" db:"id"`
	Name      *string   `json:"name,omitempty" db:"name"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	ItemIDs   []int64   `json:"item_ids" db:"-"`
}

// OutfitLog records that an outfit was worn on a calendar date. OutfitID
// becomes nil when the outfit is deleted; the log itself is kept.
type OutfitLog struct {
	ID               int64     `json:"id" db:"id"`
	OutfitID         *int64    `json:"outfit_id,omitempty" db:"outfit_id"`
	Date             string    `json:"date" db:"log_date"`
	IsOOTD           bool      `json:"is_ootd" db:"is_ootd"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	TemperatureLow   *float64  `json:"temperature_low,omitempty" db:"temperature_low"`
	TemperatureHigh  *float64  `json:"temperature_high,omitempty" db:"temperature_high"`
	WeatherCondition *string   `json:"weather_condition,omitempty" db:"weather_condition"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

type Subcategory struct {
	ID         int64  `json:"id" db:"id"`
	CategoryID int64  `json:"category_id" db:"category_id"`
	Name       string `json:"name" db:"name"`
	SortOrder  int    `json:"sort_order" db:"sort_order"`
}

// Tag is a row of one of the flat lookup tables (colors, materials, seasons,
// occasions, patterns). Hex is only populated for colors.
type Tag struct {
	ID   int64   `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Hex  *string `json:"hex,omitempty" db:"hex"`
}

type SizeSystem struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type SizeValue struct {
	ID           int64  `json:"id" db:"id"`
	SizeSystemID int64  `json:"size_system_id" db:"size_system_id"`
	Value        string `json:"value" db:"value"`
	SortOrder    int    `json:"sort_order" db:"sort_order"`
}
