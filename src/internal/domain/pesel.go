package domain

import "time"

const peselLength = 11

var peselWeights = [peselLength]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3, 1}

type century struct {
	minCode, maxCode int
	baseYear         int
}

// The month field encodes the century by offsetting the calendar month.
var peselCenturies = []century{
	{minCode: 81, maxCode: 92, baseYear: 1800},
	{minCode: 1, maxCode: 12, baseYear: 1900},
	{minCode: 21, maxCode: 32, baseYear: 2000},
	{minCode: 41, maxCode: 52, baseYear: 2100},
	{minCode: 61, maxCode: 72, baseYear: 2200},
}

// Pesel is a validated national identification number. The zero value is
// not a valid identifier; use ParsePesel.
type Pesel struct {
	raw       string
	birthDate time.Time
}

// ParsePesel validates length, charset, checksum and the encoded birth date.
func ParsePesel(raw string) (Pesel, error) {
	if len(raw) != peselLength {
		return Pesel{}, &InvalidIdentityError{Raw: raw}
	}

	var digits [peselLength]int
	for i := 0; i < peselLength; i++ {
		ch := raw[i]
		if ch < '0' || ch > '9' {
			return Pesel{}, &InvalidIdentityError{Raw: raw}
		}
		digits[i] = int(ch - '0')
	}

	sum := 0
	for i, weight := range peselWeights {
		sum += weight * digits[i]
	}
	if sum%10 != 0 {
		return Pesel{}, &InvalidIdentityError{Raw: raw}
	}

	birthDate, ok := decodeBirthDate(digits)
	if !ok {
		return Pesel{}, &InvalidIdentityError{Raw: raw}
	}

	return Pesel{raw: raw, birthDate: birthDate}, nil
}

// MustParsePesel panics on invalid input. Intended for tests and fixtures.
func MustParsePesel(raw string) Pesel {
	p, err := ParsePesel(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func decodeBirthDate(digits [peselLength]int) (time.Time, bool) {
	yearSuffix := digits[0]*10 + digits[1]
	monthCode := digits[2]*10 + digits[3]
	day := digits[4]*10 + digits[5]

	for _, c := range peselCenturies {
		if monthCode < c.minCode || monthCode > c.maxCode {
			continue
		}
		year := c.baseYear + yearSuffix
		month := time.Month(monthCode - c.minCode + 1)
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		// time.Date normalises overflow, e.g. 31 April becomes 1 May
		if date.Year() != year || date.Month() != month || date.Day() != day {
			return time.Time{}, false
		}
		return date, true
	}

	return time.Time{}, false
}

func (p Pesel) BirthDate() time.Time {
	return p.birthDate
}

func (p Pesel) IsZero() bool {
	return p.raw == ""
}

func (p Pesel) String() string {
	return p.raw
}
