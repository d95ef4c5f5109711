package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// CheckoutTransaction зафиксированная оплата корзины.
type CheckoutTransaction struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	LandlordID    uuid.UUID      `db:"landlord_id" json:"landlord_id"`
	CaseIDs       pq.StringArray `db:"case_ids" json:"case_ids"`
	Subtotal      int64          `db:"subtotal" json:"subtotal"`
	ProcessingFee int64          `db:"processing_fee" json:"processing_fee"`
	Tax           int64          `db:"tax" json:"tax"`
	Total         int64          `db:"total" json:"total"`
	Status        string         `db:"status" json:"status"`
	Provider      string         `db:"provider" json:"provider"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// CasePrice цена дела по типу, в центах.
type CasePrice struct {
	CaseType  valueobject.CaseType `db:"case_type" json:"case_type"`
	Price     int64                `db:"price" json:"price"`
	UpdatedBy *uuid.UUID           `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time            `db:"updated_at" json:"updated_at"`
}

// LawFirm юридическая фирма, к которой может быть привязано дело.
type LawFirm struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactEmail *string   `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	ReferralCode *string   `db:"referral_code" json:"referral_code,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Analytics сводка для панели администратора.
type Analytics struct {
	TotalCases         int            `json:"total_cases"`
	ByStatus           map[string]int `json:"by_status"`
	ByPaymentStatus    map[string]int `json:"by_payment_status"`
	ByContractorStatus map[string]int `json:"by_contractor_status"`
	Revenue            int64          `json:"revenue"`
	Transactions       int            `json:"transactions"`
	CasesPerDay        []DailyCount   `json:"cases_per_day"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// DailyCount количество созданных дел за день.
type DailyCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}
