package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSearchLength ограничение длины поисковой строки в рунах.
const MaxSearchLength = 100

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NormalizeSearch готовит пользовательский запрос для ILIKE: снимает диакритику,
// схлопывает пробелы, экранирует шаблонные символы и обрезает длину.
func NormalizeSearch(q string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, q)
	if err != nil {
		folded = q
	}

	folded = strings.Join(strings.Fields(folded), " ")
	if r := []rune(folded); len(r) > MaxSearchLength {
		folded = strings.TrimSpace(string(r[:MaxSearchLength]))
	}
	return likeEscaper.Replace(folded)
}
