package model

import "time"

// Item is a reported lost (or since found) item.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	LastSeen     string    `json:"lastSeen"`
	Description  string    `json:"description"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Date         time.Time `json:"date"`
}

// Item statuses.
const (
	ItemStatusLost  = "Lost"
	ItemStatusFound = "Found"
)

// ValidItemStatus reports whether status is one of the known item statuses.
func ValidItemStatus(status string) bool {
	return status == ItemStatusLost || status == ItemStatusFound
}

// NewItem holds the fields submitted when reporting an item.
type NewItem struct {
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category" validate:"required"`
	LastSeen     string `json:"lastSeen"`
	Description  string `json:"description"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

// ItemPatch is a partial update. Nil fields are left unchanged.
// ID and Date are not patchable.
type ItemPatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Category     *string `json:"category,omitempty" validate:"omitempty,min=1"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=Lost Found"`
	LastSeen     *string `json:"lastSeen,omitempty"`
	Description  *string `json:"description,omitempty"`
	ContactName  *string `json:"contactName,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
}

// Apply merges the non-nil patch fields into item.
func (p *ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.LastSeen != nil {
		item.LastSeen = *p.LastSeen
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.ContactName != nil {
		item.ContactName = *p.ContactName
	}
	if p.ContactEmail != nil {
		item.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		item.ContactPhone = *p.ContactPhone
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
}

// Empty reports whether the patch changes nothing.
func (p *ItemPatch) Empty() bool {
	return *p == ItemPatch{}
}
