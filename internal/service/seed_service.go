package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
)

// SeedUserRepository создание демо-пользователей.
type SeedUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SeedPriceRepository запись цен.
type SeedPriceRepository interface {
	SetPrice(ctx context.Context, caseType valueobject.CaseType, price int64, updatedBy *uuid.UUID) (*models.CasePrice, error)
	GetPrice(ctx context.Context, caseType valueobject.CaseType) (int64, error)
}

// SeedPropertyRepository создание объектов и арендаторов.
type SeedPropertyRepository interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	CreateTenant(ctx context.Context, t *models.Tenant) error
}

// SeedCaseRepository создание дел.
type SeedCaseRepository interface {
	Create(ctx context.Context, c *models.LegalCase, actorID uuid.UUID) error
}

// PricingFile формат YAML-файла цен:
//
//	prices:
//	  FTPR: 8000
//	  HOLDOVER: 12500
type PricingFile struct {
	Prices map[string]int64 `yaml:"prices"`
}

// DemoOptions объём демо-данных.
type DemoOptions struct {
	Landlords        int
	Contractors      int
	CasesPerLandlord int
	Password         string
	EmailDomain      string
}

// SeedStats сколько записей создано.
type SeedStats struct {
	Users      int
	Properties int
	Tenants    int
	Cases      int
}

// SeedService заполняет справочник цен и демо-данные.
type SeedService struct {
	users      SeedUserRepository
	prices     SeedPriceRepository
	properties SeedPropertyRepository
	cases      SeedCaseRepository
	rnd        *rand.Rand
}

// NewSeedService создаёт сервис генерации данных.
func NewSeedService(users SeedUserRepository, prices SeedPriceRepository, properties SeedPropertyRepository, cases SeedCaseRepository) *SeedService {
	return &SeedService{
		users:      users,
		prices:     prices,
		properties: properties,
		cases:      cases,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ParsePricing читает YAML с ценами и проверяет типы дел и суммы.
func ParsePricing(r io.Reader) (map[valueobject.CaseType]int64, error) {
	var file PricingFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("seed service: decode pricing: %w", err)
	}
	if len(file.Prices) == 0 {
		return nil, errors.New("seed service: pricing file has no prices")
	}

	out := make(map[valueobject.CaseType]int64, len(file.Prices))
	for raw, price := range file.Prices {
		caseType, err := valueobject.ParseCaseType(raw)
		if err != nil {
			return nil, fmt.Errorf("seed service: %w", err)
		}
		if price < 0 {
			return nil, fmt.Errorf("seed service: price for %s cannot be negative", caseType)
		}
		out[caseType] = price
	}
	return out, nil
}

// SeedPricing записывает цены из YAML.
func (s *SeedService) SeedPricing(ctx context.Context, r io.Reader) (int, error) {
	prices, err := ParsePricing(r)
	if err != nil {
		return 0, err
	}
	for caseType, price := range prices {
		if _, err := s.prices.SetPrice(ctx, caseType, price, nil); err != nil {
			return 0, fmt.Errorf("seed service: set price %s: %w", caseType, err)
		}
	}
	logger.Log.WithField("count", len(prices)).Info("pricing seeded")
	return len(prices), nil
}

// SeedDemo создаёт арендодателей с объектами, арендаторами и делами в корзине, плюс исполнителей.
// Существующие пользователи с теми же email переиспользуются.
func (s *SeedService) SeedDemo(ctx context.Context, opts DemoOptions) (*SeedStats, error) {
	if opts.Password == "" {
		opts.Password = "DemoPass123!"
	}
	if opts.EmailDomain == "" {
		opts.EmailDomain = "demo.local"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("seed service: hash password: %w", err)
	}

	stats := &SeedStats{}
	for i := 0; i < opts.Contractors; i++ {
		email := fmt.Sprintf("contractor%d@%s", i+1, opts.EmailDomain)
		if _, created, err := s.ensureUser(ctx, email, string(hash), valueobject.RoleContractor); err != nil {
			return nil, err
		} else if created {
			stats.Users++
		}
	}

	for i := 0; i < opts.Landlords; i++ {
		email := fmt.Sprintf("landlord%d@%s", i+1, opts.EmailDomain)
		landlord, created, err := s.ensureUser(ctx, email, string(hash), valueobject.RoleLandlord)
		if err != nil {
			return nil, err
		}
		if created {
			stats.Users++
		}
		for j := 0; j < opts.CasesPerLandlord; j++ {
			if err := s.seedCase(ctx, landlord.ID, stats); err != nil {
				return nil, err
			}
		}
	}

	logger.Log.WithField("stats", fmt.Sprintf("%+v", *stats)).Info("demo data seeded")
	return stats, nil
}

func (s *SeedService) ensureUser(ctx context.Context, email, hash string, role valueobject.Role) (*models.User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("seed service: lookup %s: %w", email, err)
	}

	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FullName:     s.pick(firstNames) + " " + s.pick(lastNames),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("seed service: create %s: %w", email, err)
	}
	return u, true, nil
}

func (s *SeedService) seedCase(ctx context.Context, landlordID uuid.UUID, stats *SeedStats) error {
	place := demoPlaces[s.rnd.Intn(len(demoPlaces))]
	bedrooms := 1 + s.rnd.Intn(4)
	p := &models.Property{
		LandlordID:   landlordID,
		Address:      fmt.Sprintf("%d %s", 100+s.rnd.Intn(9800), s.pick(streets)),
		City:         place.city,
		State:        "MD",
		ZipCode:      place.zip,
		County:       place.county,
		PropertyType: "residential",
		Bedrooms:     &bedrooms,
	}
	if err := s.properties.CreateProperty(ctx, p); err != nil {
		return fmt.Errorf("seed service: create property: %w", err)
	}
	stats.Properties++

	t := &models.Tenant{
		LandlordID:  landlordID,
		PropertyID:  p.ID,
		TenantNames: []string{s.pick(firstNames) + " " + s.pick(lastNames)},
	}
	if err := s.properties.CreateTenant(ctx, t); err != nil {
		return fmt.Errorf("seed service: create tenant: %w", err)
	}
	stats.Tenants++

	caseType := valueobject.CaseTypeFTPR
	if s.rnd.Intn(4) == 0 {
		caseType = valueobject.CaseTypeHoldover
	}
	price, err := s.prices.GetPrice(ctx, caseType)
	if err != nil {
		return fmt.Errorf("seed service: price for %s: %w", caseType, err)
	}
	rent := int64(80000 + s.rnd.Intn(200000))
	c := &models.LegalCase{
		LandlordID:       landlordID,
		PropertyID:       p.ID,
		TenantID:         t.ID,
		CaseType:         caseType,
		Status:           valueobject.CaseStatusNoticeDraft,
		PaymentStatus:    valueobject.PaymentStatusUnpaid,
		ContractorStatus: valueobject.ContractorStatusUnassigned,
		Price:            price,
		RentOwedAtFiling: rent,
		CurrentRentOwed:  rent,
		DateInitiated:    time.Now().UTC(),
	}
	if err := s.cases.Create(ctx, c, landlordID); err != nil {
		return fmt.Errorf("seed service: create case: %w", err)
	}
	stats.Cases++
	return nil
}

func (s *SeedService) pick(values []string) string {
	return values[s.rnd.Intn(len(values))]
}

var (
	firstNames = []string{"James", "Maria", "Robert", "Linda", "Michael", "Patricia", "David", "Jennifer", "Daniel", "Aisha", "Kevin", "Grace"}
	lastNames  = []string{"Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Wilson", "Moore", "Taylor", "Thomas", "Jackson"}
	streets    = []string{"N Charles St", "E Pratt St", "Greenmount Ave", "Harford Rd", "York Rd", "Liberty Heights Ave", "Eastern Ave", "Belair Rd"}
	demoPlaces = []struct{ city, zip, county string }{
		{"Baltimore", "21201", "Baltimore City"},
		{"Baltimore", "21218", "Baltimore City"},
		{"Towson", "21204", "Baltimore County"},
		{"Columbia", "21044", "Howard County"},
		{"Annapolis", "21401", "Anne Arundel County"},
		{"Silver Spring", "20910", "Montgomery County"},
	}
)
