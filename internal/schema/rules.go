package schema

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"scoreapi/pkg/requestcontext"
)

// Gender codes accepted by the Gender field.
const (
	GenderUnknown int64 = 0
	GenderMale    int64 = 1
	GenderFemale  int64 = 2
)

// DateLayout is the textual date format accepted by Date and Birthday fields.
const DateLayout = "02.01.2006"

// MaxAgeYears bounds Birthday fields; age is days/365, not calendar years.
const MaxAgeYears = 70

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phonePattern = regexp.MustCompile(`^7\d{10}$`)
	datePattern  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
)

var (
	errNotString  = errors.New("must be a string")
	errNotObject  = errors.New("must be a JSON object")
	errNotInteger = errors.New("must be an integer")
	errNotArray   = errors.New("must be an array")
)

// Char accepts any text.
func Char(name string, opts ...FieldOption) Field {
	return newField(name, "char", charRule, opts...)
}

// Arguments accepts a string-keyed mapping.
func Arguments(name string, opts ...FieldOption) Field {
	return newField(name, "arguments", argumentsRule, opts...)
}

// Email accepts local@domain.tld addresses.
func Email(name string, opts ...FieldOption) Field {
	return newField(name, "email", emailRule, opts...)
}

// Phone accepts text or an integer and canonicalizes to an 11-digit string starting with 7.
func Phone(name string, opts ...FieldOption) Field {
	return newField(name, "phone", phoneRule, opts...)
}

// Date accepts DD.MM.YYYY text without checking the calendar.
func Date(name string, opts ...FieldOption) Field {
	return newField(name, "date", dateRule, opts...)
}

// Birthday accepts a DD.MM.YYYY calendar date less than MaxAgeYears in the past
// and canonicalizes it to a time.Time.
func Birthday(name string, opts ...FieldOption) Field {
	return newField(name, "birthday", birthdayRule, opts...)
}

// Gender accepts GenderUnknown, GenderMale or GenderFemale.
func Gender(name string, opts ...FieldOption) Field {
	return newField(name, "gender", genderRule, opts...)
}

// ClientIDs accepts a sequence of integers and canonicalizes it to []int64.
func ClientIDs(name string, opts ...FieldOption) Field {
	return newField(name, "client_ids", clientIDsRule, opts...)
}

func charRule(_ context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errNotString
	}
	return s, nil
}

func argumentsRule(_ context.Context, raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

func emailRule(_ context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errNotString
	}
	if !emailPattern.MatchString(s) {
		return nil, errors.New("is not a valid email address")
	}
	return s, nil
}

func phoneRule(_ context.Context, raw any) (any, error) {
	var s string
	if text, ok := raw.(string); ok {
		s = text
	} else if n, ok := asInt(raw); ok {
		s = strconv.FormatInt(n, 10)
	} else {
		return nil, errors.New("must be a string or an integer")
	}
	if !phonePattern.MatchString(s) {
		return nil, errors.New("is not a valid phone number")
	}
	return s, nil
}

func dateRule(_ context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errNotString
	}
	if !datePattern.MatchString(s) {
		return nil, errors.New("is not a date in DD.MM.YYYY format")
	}
	return s, nil
}

func birthdayRule(ctx context.Context, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errNotString
	}
	if !datePattern.MatchString(s) {
		return nil, errors.New("is not a date in DD.MM.YYYY format")
	}
	born, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return nil, errors.New("is not a valid calendar date")
	}
	days := int64(requestcontext.Now(ctx).Sub(born).Hours() / 24)
	if days/365 >= MaxAgeYears {
		return nil, errors.New("is more than 70 years ago")
	}
	return born, nil
}

func genderRule(_ context.Context, raw any) (any, error) {
	n, ok := asInt(raw)
	if !ok {
		return nil, errNotInteger
	}
	switch n {
	case GenderUnknown, GenderMale, GenderFemale:
		return n, nil
	}
	return nil, errors.New("must be one of 0, 1, 2")
}

func clientIDsRule(_ context.Context, raw any) (any, error) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, errNotArray
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			return nil, errors.New("must contain only integers")
		}
		ids = append(ids, n)
	}
	return ids, nil
}
