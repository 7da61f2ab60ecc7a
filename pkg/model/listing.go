package model

import (
	"fmt"
	"time"
)

const (
	ListingStatusAvailable   = "available"
	ListingStatusRented      = "rented"
	ListingStatusMaintenance = "maintenance"
)

type Address struct {
	Street     string `json:"street" bson:"street" validate:"required,max=200"`
	Number     string `json:"number" bson:"number" validate:"required,max=20"`
	District   string `json:"district" bson:"district" validate:"required,max=100"`
	City       string `json:"city" bson:"city" validate:"required,max=100"`
	State      string `json:"state" bson:"state" validate:"required,max=50"`
	PostalCode string `json:"postal_code" bson:"postal_code" validate:"required,max=20"`
}

// Full renders the address the way appointment summaries present it.
func (a Address) Full() string {
	return fmt.Sprintf("%s, %s - %s, %s - %s", a.Street, a.Number, a.District, a.City, a.State)
}

type Listing struct {
	ID          string  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string  `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description string  `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Type        string  `json:"type" bson:"type" validate:"required,min=2,max=50"`
	Price       float64 `json:"price" bson:"price" validate:"required,gt=0"`
	Bedrooms    int     `json:"bedrooms" bson:"bedrooms" validate:"gte=0"`
	Bathrooms   int     `json:"bathrooms" bson:"bathrooms" validate:"gte=0"`
	Area        float64 `json:"area" bson:"area" validate:"gte=0"`

	Address Address `json:"address" bson:"address"`

	Latitude  *float64 `json:"latitude,omitempty" bson:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" bson:"longitude,omitempty" validate:"omitempty,longitude"`

	MainImage        string   `json:"main_image,omitempty" bson:"main_image,omitempty" validate:"omitempty,url,max=500"`
	AdditionalImages []string `json:"additional_images,omitempty" bson:"additional_images,omitempty" validate:"omitempty,dive,url"`

	Status   string `json:"status" bson:"status" validate:"omitempty,oneof=available rented maintenance"`
	Featured bool   `json:"featured" bson:"featured"`

	OwnerID string `json:"owner_id,omitempty" bson:"owner_id,omitempty" validate:"omitempty,mongodb"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// AddressUpdate patches individual address fields.
type AddressUpdate struct {
	Street     *string `json:"street,omitempty" validate:"omitempty,min=1,max=200"`
	Number     *string `json:"number,omitempty" validate:"omitempty,min=1,max=20"`
	District   *string `json:"district,omitempty" validate:"omitempty,min=1,max=100"`
	City       *string `json:"city,omitempty" validate:"omitempty,min=1,max=100"`
	State      *string `json:"state,omitempty" validate:"omitempty,min=1,max=50"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,min=1,max=20"`
}

// ListingUpdate enumerates exactly the mutable listing fields. Only supplied
// fields change; nil means untouched.
type ListingUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type        *string  `json:"type,omitempty" validate:"omitempty,min=2,max=50"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Bedrooms    *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	Bathrooms   *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0"`
	Area        *float64 `json:"area,omitempty" validate:"omitempty,gte=0"`

	Address *AddressUpdate `json:"address,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`

	MainImage        *string   `json:"main_image,omitempty" validate:"omitempty,url,max=500"`
	AdditionalImages *[]string `json:"additional_images,omitempty" validate:"omitempty,dive,url"`

	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance"`
	Featured *bool   `json:"featured,omitempty"`
}

// ListingFilter is the query-engine input: nil/zero fields are not applied.
type ListingFilter struct {
	Search   string
	Type     string
	PriceMin *float64
	PriceMax *float64
	Bedrooms *int
	District string
	City     string
}

// ListingSummary is the denormalized form attached to appointments.
type ListingSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Address string `json:"address"`
}
