package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Nullable is a patch field for an optional column. The zero value leaves the
// column untouched; Set with a nil Value clears it.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func Clear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// ItemPatch carries a partial update of a clothing item. Nil pointers and
// unset Nullable fields are left unchanged.
type ItemPatch struct {
	Name             *string
	Brand            Nullable[string]
	CategoryID       Nullable[int64]
	SubcategoryID    Nullable[int64]
	SizeSystemID     Nullable[int64]
	SizeValueID      Nullable[int64]
	Waist            Nullable[float64]
	Inseam           Nullable[float64]
	PurchasePrice    Nullable[decimal.Decimal]
	PurchaseDate     Nullable[time.Time]
	PurchaseLocation Nullable[string]
	ImageURI         Nullable[string]
	Notes            Nullable[string]
	Status           *ItemStatus
	WashStatus       *WashStatus
	IsFavorite       *bool
}

// Columns returns the column assignments the patch describes.
func (p ItemPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	setNullable(cols, "brand", p.Brand)
	setNullable(cols, "category_id", p.CategoryID)
	setNullable(cols, "subcategory_id", p.SubcategoryID)
	setNullable(cols, "size_system_id", p.SizeSystemID)
	setNullable(cols, "size_value_id", p.SizeValueID)
	setNullable(cols, "waist", p.Waist)
	setNullable(cols, "inseam", p.Inseam)
	if p.PurchasePrice.Set {
		price := decimal.NullDecimal{}
		if p.PurchasePrice.Value != nil {
			price = decimal.NewNullDecimal(*p.PurchasePrice.Value)
		}
		cols["purchase_price"] = price
	}
	setNullable(cols, "purchase_date", p.PurchaseDate)
	setNullable(cols, "purchase_location", p.PurchaseLocation)
	setNullable(cols, "image_uri", p.ImageURI)
	setNullable(cols, "notes", p.Notes)
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.WashStatus != nil {
		cols["wash_status"] = string(*p.WashStatus)
	}
	if p.IsFavorite != nil {
		cols["is_favorite"] = *p.IsFavorite
	}
	return cols
}

// Apply merges the patch into item, returning the post-update view.
func (p ItemPatch) Apply(item ClothingItem) ClothingItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	applyNullable(&item.Brand, p.Brand)
	applyNullable(&item.CategoryID, p.CategoryID)
	applyNullable(&item.SubcategoryID, p.SubcategoryID)
	applyNullable(&item.SizeSystemID, p.SizeSystemID)
	applyNullable(&item.SizeValueID, p.SizeValueID)
	applyNullable(&item.Waist, p.Waist)
	applyNullable(&item.Inseam, p.Inseam)
	if p.PurchasePrice.Set {
		item.PurchasePrice = decimal.NullDecimal{}
		if p.PurchasePrice.Value != nil {
			item.PurchasePrice = decimal.NewNullDecimal(*p.PurchasePrice.Value)
		}
	}
	applyNullable(&item.PurchaseDate, p.PurchaseDate)
	applyNullable(&item.PurchaseLocation, p.PurchaseLocation)
	applyNullable(&item.ImageURI, p.ImageURI)
	applyNullable(&item.Notes, p.Notes)
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.WashStatus != nil {
		item.WashStatus = *p.WashStatus
	}
	if p.IsFavorite != nil {
		item.IsFavorite = *p.IsFavorite
	}
	return item
}

type OutfitPatch struct {
	Name  Nullable[string]
	Notes Nullable[string]
	// ItemIDs, when non-nil, replaces the outfit's full membership.
	ItemIDs *[]int64
}

func (p OutfitPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setNullable(cols, "name", p.Name)
	setNullable(cols, "notes", p.Notes)
	return cols
}

type OutfitLogPatch struct {
	OutfitID         Nullable[int64]
	Date             *string
	IsOOTD           *bool
	Notes            Nullable[string]
	TemperatureLow   Nullable[float64]
	TemperatureHigh  Nullable[float64]
	WeatherCondition Nullable[string]
}

func (p OutfitLogPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	setNullable(cols, "outfit_id", p.OutfitID)
	if p.Date != nil {
		cols["log_date"] = *p.Date
	}
	if p.IsOOTD != nil {
		cols["is_ootd"] = *p.IsOOTD
	}
	setNullable(cols, "notes", p.Notes)
	setNullable(cols, "temperature_low", p.TemperatureLow)
	setNullable(cols, "temperature_high", p.TemperatureHigh)
	setNullable(cols, "weather_condition", p.WeatherCondition)
	return cols
}

func setNullable[T any](cols map[string]interface{}, column string, field Nullable[T]) {
	if !field.Set {
		return
	}
	if field.Value == nil {
		cols[column] = nil
		return
	}
	cols[column] = *field.Value
}

func applyNullable[T any](dst **T, field Nullable[T]) {
	if !field.Set {
		return
	}
	if field.Value == nil {
		*dst = nil
		return
	}
	v := *field.Value
	*dst = &v
}

// DateLayout is the calendar-date format used for outfit logs.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
