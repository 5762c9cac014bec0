package domain

import (
	"fmt"
	"strings"
	"time"
)

// MinOwnerAge is the youngest age, in full years, allowed to open an account.
const MinOwnerAge = 18

type Owner struct {
	Pesel     Pesel
	FirstName string
	LastName  string
}

func NewOwner(pesel Pesel, firstName string, lastName string) (Owner, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if pesel.IsZero() {
		return Owner{}, fmt.Errorf("%w: pesel is required", ErrInvalidOwnerData)
	}
	if firstName == "" {
		return Owner{}, fmt.Errorf("%w: firstName is required", ErrInvalidOwnerData)
	}
	if lastName == "" {
		return Owner{}, fmt.Errorf("%w: lastName is required", ErrInvalidOwnerData)
	}

	return Owner{Pesel: pesel, FirstName: firstName, LastName: lastName}, nil
}

// AgeAt returns the number of full years between the birth date and at.
func (o Owner) AgeAt(at time.Time) int {
	born := o.Pesel.BirthDate()
	at = at.UTC()

	age := at.Year() - born.Year()
	if at.Month() < born.Month() || (at.Month() == born.Month() && at.Day() < born.Day()) {
		age--
	}
	return age
}
