// Location normalization for US and Canada job locations.
// Output form: "City, State/Province, Country".

package geo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// "City, ST" followed by whitespace, another comma or end of string.
	cityCodeRegex = regexp.MustCompile(`^([^,]+),\s*([A-Z]{2})(?:\s|,|$)`)

	noiseRegex = []*regexp.Regexp{
		regexp.MustCompile(`wide\s*open`),
		regexp.MustCompile(`work\s*from\s*home`),
		regexp.MustCompile(`anywhere`),
		regexp.MustCompile(`remote`),
		regexp.MustCompile(`opportunity`),
	}

	bareCountries = []string{"canada", "united states", "usa"}
)

// Normalize maps a raw location to its canonical form.
// ok is false when the string has no usable state/province marker
// and callers should treat it as a reject.
func Normalize(raw string) (normalized string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	//1. "City, ST"
	if m := cityCodeRegex.FindStringSubmatch(s); m != nil {
		city := titleCase(strings.TrimSpace(m[1]))
		code := m[2]

		if name, found := provinceByCode[code]; found {
			return canonical(city, name, CountryCanada), true
		}
		if name, found := stateByCode[code]; found {
			return canonical(city, name, CountryUnitedStates), true
		}
	}

	//2. "City, Full Region Name"
	lower := strings.ToLower(s)
	if name, found := findFullName(lower, canadaProvinces); found {
		return canonical(cityOf(s), name, CountryCanada), true
	}
	if name, found := findFullName(lower, usaStates); found {
		return canonical(cityOf(s), name, CountryUnitedStates), true
	}

	//3. no comma: only bare country names survive
	if !strings.Contains(s, ",") {
		for _, c := range bareCountries {
			if lower == c {
				return titleCase(s), true
			}
		}
		return "", false
	}

	//4. comma but no recognizable region
	return "", false
}

// IsValid reports whether raw normalizes and carries none of the noise phrases.
func IsValid(raw string) bool {
	if _, ok := Normalize(raw); !ok {
		return false
	}
	lower := strings.ToLower(raw)
	for _, re := range noiseRegex {
		if re.MatchString(lower) {
			return false
		}
	}
	return true
}

func findFullName(lower string, regions []region) (string, bool) {
	for _, r := range regions {
		if strings.Contains(lower, ", "+strings.ToLower(r.Name)) {
			return r.Name, true
		}
	}
	return "", false
}

func cityOf(s string) string {
	city, _, _ := strings.Cut(s, ",")
	return titleCase(strings.TrimSpace(city))
}

func canonical(city, region, country string) string {
	return fmt.Sprintf("%s, %s, %s", city, region, country)
}

// titleCase capitalizes every run of cased letters on its own, so a letter
// after an apostrophe or digit starts a new word: "o'fallon" -> "O'Fallon",
// "3rd" -> "3Rd". Caser is stateful, build one per call.
func titleCase(s string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	start := -1
	for i, r := range s {
		if isCased(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}
