package valueobject

import (
	"strings"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// CaseStatus статус юридического дела.
type CaseStatus string

const (
	CaseStatusNoticeDraft CaseStatus = "NOTICE_DRAFT"
	CaseStatusSubmitted   CaseStatus = "SUBMITTED"
	CaseStatusInProgress  CaseStatus = "IN_PROGRESS"
	CaseStatusComplete    CaseStatus = "COMPLETE"
	CaseStatusCancelled   CaseStatus = "CANCELLED"
)

// CaseStatuses перечисляет все статусы дела в порядке номинального пути.
var CaseStatuses = []CaseStatus{
	CaseStatusNoticeDraft,
	CaseStatusSubmitted,
	CaseStatusInProgress,
	CaseStatusComplete,
	CaseStatusCancelled,
}

func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusNoticeDraft, CaseStatusSubmitted, CaseStatusInProgress, CaseStatusComplete, CaseStatusCancelled:
		return true
	}
	return false
}

// IsTerminal сообщает, что номинальный путь дела закончен.
// Значение справочное: обновление статуса из терминального состояния разрешено.
func (s CaseStatus) IsTerminal() bool {
	switch s {
	case CaseStatusComplete, CaseStatusCancelled:
		return true
	}
	return false
}

// Next возвращает следующий статус номинального пути для подсказок в UI.
func (s CaseStatus) Next() (CaseStatus, bool) {
	switch s {
	case CaseStatusNoticeDraft:
		return CaseStatusSubmitted, true
	case CaseStatusSubmitted:
		return CaseStatusInProgress, true
	case CaseStatusInProgress:
		return CaseStatusComplete, true
	}
	return "", false
}

// IsPostable сообщает, может ли дело появиться в пуле заданий исполнителей.
func (s CaseStatus) IsPostable() bool {
	return s == CaseStatusSubmitted || s == CaseStatusInProgress
}

func ParseCaseStatus(status string) (CaseStatus, error) {
	s := CaseStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid case status %q", status)
	}
	return s, nil
}

// PaymentStatus статус оплаты дела, независимый от CaseStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

func ParsePaymentStatus(status string) (PaymentStatus, error) {
	s := PaymentStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid payment status %q", status)
	}
	return s, nil
}

// ContractorStatus статус задания исполнителя по делу.
type ContractorStatus string

const (
	ContractorStatusUnassigned ContractorStatus = "UNASSIGNED"
	ContractorStatusAssigned   ContractorStatus = "ASSIGNED"
	ContractorStatusInProgress ContractorStatus = "IN_PROGRESS"
	ContractorStatusCompleted  ContractorStatus = "COMPLETED"
)

func (s ContractorStatus) IsValid() bool {
	switch s {
	case ContractorStatusUnassigned, ContractorStatusAssigned, ContractorStatusInProgress, ContractorStatusCompleted:
		return true
	}
	return false
}

// IsActive сообщает, что задание закреплено за исполнителем и ещё не завершено.
func (s ContractorStatus) IsActive() bool {
	return s == ContractorStatusAssigned || s == ContractorStatusInProgress
}

// CanTransitionTo описывает переходы, доступные через смену статуса.
// Захват и освобождение задания выполняются отдельными операциями.
func (s ContractorStatus) CanTransitionTo(next ContractorStatus) bool {
	switch s {
	case ContractorStatusAssigned:
		return next == ContractorStatusInProgress || next == ContractorStatusCompleted
	case ContractorStatusInProgress:
		return next == ContractorStatusCompleted
	}
	return false
}

// ParseContractorStatus принимает CLAIMED как синоним ASSIGNED.
func ParseContractorStatus(status string) (ContractorStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(status))
	if normalized == "CLAIMED" {
		return ContractorStatusAssigned, nil
	}
	s := ContractorStatus(normalized)
	if !s.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid contractor status %q", status)
	}
	return s, nil
}

// CaseType тип дела, задаётся при создании.
type CaseType string

const (
	CaseTypeFTPR     CaseType = "FTPR"
	CaseTypeHoldover CaseType = "HOLDOVER"
	CaseTypeOther    CaseType = "OTHER"
)

var CaseTypes = []CaseType{CaseTypeFTPR, CaseTypeHoldover, CaseTypeOther}

func (t CaseType) IsValid() bool {
	switch t {
	case CaseTypeFTPR, CaseTypeHoldover, CaseTypeOther:
		return true
	}
	return false
}

// Label человекочитаемое название для писем и отчётов.
func (t CaseType) Label() string {
	switch t {
	case CaseTypeFTPR:
		return "Failure to Pay Rent"
	case CaseTypeHoldover:
		return "Tenant Holdover"
	case CaseTypeOther:
		return "Other"
	}
	return string(t)
}

func ParseCaseType(caseType string) (CaseType, error) {
	t := CaseType(strings.ToUpper(strings.TrimSpace(caseType)))
	if !t.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid case type %q", caseType)
	}
	return t, nil
}
