package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
)

// LegalCase юридическое дело о выселении вместе с полями задания исполнителя.
type LegalCase struct {
	ID                  uuid.UUID                    `db:"id" json:"id"`
	LandlordID          uuid.UUID                    `db:"landlord_id" json:"landlord_id"`
	PropertyID          uuid.UUID                    `db:"property_id" json:"property_id"`
	TenantID            uuid.UUID                    `db:"tenant_id" json:"tenant_id"`
	LawFirmID           *uuid.UUID                   `db:"law_firm_id" json:"law_firm_id,omitempty"`
	CaseType            valueobject.CaseType         `db:"case_type" json:"case_type"`
	Status              valueobject.CaseStatus       `db:"status" json:"status"`
	PaymentStatus       valueobject.PaymentStatus    `db:"payment_status" json:"payment_status"`
	Price               int64                        `db:"price" json:"price"`
	RentOwedAtFiling    int64                        `db:"rent_owed_at_filing" json:"rent_owed_at_filing"`
	CurrentRentOwed     int64                        `db:"current_rent_owed" json:"current_rent_owed"`
	LateFeesCharged     int64                        `db:"late_fees_charged" json:"late_fees_charged"`
	NoRightOfRedemption bool                         `db:"no_right_of_redemption" json:"no_right_of_redemption"`
	DateInitiated       time.Time                    `db:"date_initiated" json:"date_initiated"`
	CourtCaseNumber     *string                      `db:"court_case_number" json:"court_case_number,omitempty"`
	TrialDate           *time.Time                   `db:"trial_date" json:"trial_date,omitempty"`
	CourtHearingDate    *time.Time                   `db:"court_hearing_date" json:"court_hearing_date,omitempty"`
	CourtOutcomeNotes   *string                      `db:"court_outcome_notes" json:"court_outcome_notes,omitempty"`
	ContractorID        *uuid.UUID                   `db:"contractor_id" json:"contractor_id,omitempty"`
	ContractorStatus    valueobject.ContractorStatus `db:"contractor_status" json:"contractor_status"`
	AssignedAt          *time.Time                   `db:"assigned_at" json:"assigned_at,omitempty"`
	DueDate             *time.Time                   `db:"due_date" json:"due_date,omitempty"`
	JobCompletedAt      *time.Time                   `db:"job_completed_at" json:"job_completed_at,omitempty"`
	ContractorNotes     *string                      `db:"contractor_notes" json:"contractor_notes,omitempty"`
	CreatedAt           time.Time                    `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time                    `db:"updated_at" json:"updated_at"`
}

// IsInCart дело лежит в корзине арендодателя, пока оно черновик и не оплачено.
func (c *LegalCase) IsInCart() bool {
	return c.Status == valueobject.CaseStatusNoticeDraft && c.PaymentStatus == valueobject.PaymentStatusUnpaid
}

// IsAssignedTo сообщает, закреплено ли задание за исполнителем.
func (c *LegalCase) IsAssignedTo(contractorID uuid.UUID) bool {
	return c.ContractorID != nil && *c.ContractorID == contractorID
}

// CaseView дело с данными объекта и арендатора из JOIN.
// Поля объекта и арендатора пустые, если связанная запись не найдена.
type CaseView struct {
	LegalCase
	PropertyAddress *string        `db:"property_address" json:"property_address,omitempty"`
	PropertyCity    *string        `db:"property_city" json:"property_city,omitempty"`
	PropertyState   *string        `db:"property_state" json:"property_state,omitempty"`
	PropertyZip     *string        `db:"property_zip" json:"property_zip,omitempty"`
	PropertyCounty  *string        `db:"property_county" json:"property_county,omitempty"`
	TenantNames     pq.StringArray `db:"tenant_names" json:"tenant_names"`
	LandlordName    *string        `db:"landlord_name" json:"landlord_name,omitempty"`
	LandlordEmail   *string        `db:"landlord_email" json:"landlord_email,omitempty"`
	LawFirmName     *string        `db:"law_firm_name" json:"law_firm_name,omitempty"`
}

// HasResolvableParties объект и арендатор дела существуют.
func (v *CaseView) HasResolvableParties() bool {
	return v.PropertyID != uuid.Nil && v.TenantID != uuid.Nil && v.PropertyAddress != nil && v.TenantNames != nil
}

// AddressLine адрес объекта одной строкой.
func (v *CaseView) AddressLine() string {
	if v.PropertyAddress == nil {
		return ""
	}
	line := *v.PropertyAddress
	if v.PropertyCity != nil {
		line += ", " + *v.PropertyCity
	}
	if v.PropertyState != nil {
		line += ", " + *v.PropertyState
	}
	if v.PropertyZip != nil {
		line += " " + *v.PropertyZip
	}
	return line
}

// Job проекция дела для исполнителя.
type Job struct {
	CaseView
	UploadedDocuments []valueobject.DocumentType `db:"-" json:"uploaded_documents"`
	MissingDocuments  []valueobject.DocumentType `db:"-" json:"missing_documents"`
}
