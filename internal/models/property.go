package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property объект недвижимости арендодателя.
type Property struct {
	ID           uuid.UUID `db:"id" json:"id"`
	LandlordID   uuid.UUID `db:"landlord_id" json:"landlord_id"`
	Address      string    `db:"address" json:"address"`
	Unit         *string   `db:"unit" json:"unit,omitempty"`
	City         string    `db:"city" json:"city"`
	State        string    `db:"state" json:"state"`
	ZipCode      string    `db:"zip_code" json:"zip_code"`
	County       string    `db:"county" json:"county"`
	PropertyType string    `db:"property_type" json:"property_type"`
	Bedrooms     *int      `db:"bedrooms" json:"bedrooms,omitempty"`
	Bathrooms    *int      `db:"bathrooms" json:"bathrooms,omitempty"`
	YearBuilt    *int      `db:"year_built" json:"year_built,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullAddress адрес одной строкой для писем и отчётов.
func (p *Property) FullAddress() string {
	street := p.Address
	if p.Unit != nil && *p.Unit != "" {
		street += " " + *p.Unit
	}
	return fmt.Sprintf("%s, %s, %s %s", street, p.City, p.State, p.ZipCode)
}

// Tenant арендатор(ы), проживающие в объекте.
type Tenant struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	LandlordID   uuid.UUID      `db:"landlord_id" json:"landlord_id"`
	PropertyID   uuid.UUID      `db:"property_id" json:"property_id"`
	TenantNames  pq.StringArray `db:"tenant_names" json:"tenant_names"`
	Email        *string        `db:"email" json:"email,omitempty"`
	Phone        *string        `db:"phone" json:"phone,omitempty"`
	IsSubsidized bool           `db:"is_subsidized" json:"is_subsidized"`
	SubsidyType  *string        `db:"subsidy_type" json:"subsidy_type,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Names имена арендаторов через запятую.
func (t *Tenant) Names() string {
	return strings.Join(t.TenantNames, ", ")
}
