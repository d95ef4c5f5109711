package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MaxFullNameLength     = 100
	MaxBusinessNameLength = 200
	MinAddressLength      = 3
	MaxAddressLength      = 300
	MaxCityLength         = 100
	MaxCountyLength       = 100
	MaxTenantNameLength   = 150
	MaxTenantsPerRecord   = 10
	MaxNotesLength        = 5000
	MaxCourtCaseNumber    = 64
	MaxAmountCents        = int64(100_000_000_00) // 100 миллионов долларов
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	zipRegex         = regexp.MustCompile(`^\d{5}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

// usStates двухбуквенные коды штатов и округа Колумбия.
var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {}, "FL": {},
	"GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {},
	"MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {},
	"NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {},
	"SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {},
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be 1 to 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("email domain must be 1 to 255 characters")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("email local part contains invalid characters")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("email domain is malformed")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateOptionalLength проверяет длину необязательного поля.
func ValidateOptionalLength(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidatePhone проверяет номер телефона, если он указан.
func ValidatePhone(phone *string) error {
	if phone == nil || strings.TrimSpace(*phone) == "" {
		return nil
	}
	if !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		return fmt.Errorf("phone number is malformed")
	}
	return nil
}

// IsUSState сообщает, является ли код штатом США.
func IsUSState(code string) bool {
	_, ok := usStates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsZip5 сообщает, является ли строка пятизначным ZIP-кодом.
func IsZip5(zip string) bool {
	return zipRegex.MatchString(strings.TrimSpace(zip))
}

// ValidateAddress проверяет адрес объекта.
func ValidateAddress(address, city, state, zip, county string) error {
	if err := ValidateLength("address", strings.TrimSpace(address), MinAddressLength, MaxAddressLength); err != nil {
		return err
	}
	if err := ValidateNonEmpty("city", city); err != nil {
		return err
	}
	if err := ValidateLength("city", strings.TrimSpace(city), 0, MaxCityLength); err != nil {
		return err
	}
	if !IsUSState(state) {
		return fmt.Errorf("state must be a two-letter US state code")
	}
	if !IsZip5(zip) {
		return fmt.Errorf("zip code must be 5 digits")
	}
	if err := ValidateNonEmpty("county", county); err != nil {
		return err
	}
	return ValidateLength("county", strings.TrimSpace(county), 0, MaxCountyLength)
}

// ValidateTenantNames проверяет список имён арендаторов.
func ValidateTenantNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one tenant name is required")
	}
	if len(names) > MaxTenantsPerRecord {
		return fmt.Errorf("at most %d tenant names are allowed", MaxTenantsPerRecord)
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("tenant name cannot be empty")
		}
		if err := ValidateLength("tenant name", name, 0, MaxTenantNameLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAmount проверяет денежную сумму в центах.
func ValidateAmount(fieldName string, cents int64) error {
	if cents < 0 {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}
	if cents > MaxAmountCents {
		return fmt.Errorf("%s is too large", fieldName)
	}
	return nil
}
