package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hearth/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON parses the request body into dst with a size cap.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", core.ErrInvalidArgument)
	}
	return nil
}

// parseMonthYear extracts month and year from query parameters, using
// the current month as the default for missing values.
func parseMonthYear(query url.Values) (month, year int, err error) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: month must be a number", core.ErrInvalidArgument)
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: year must be a number", core.ErrInvalidArgument)
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month out of range", core.ErrInvalidArgument)
	}
	return month, year, nil
}

// parseOptionalInt returns 0 when the parameter is absent.
func parseOptionalInt(query url.Values, key string) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrInvalidArgument, key)
	}
	return n, nil
}

// parseDate parses a YYYY-MM-DD date string.
func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.Date{Time: t.UTC()}, nil
}

// parseAmount converts a JSON amount (string or number) to positive cents.
func parseAmount(n json.Number) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(n.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseOptionalAmount behaves like parseAmount but treats an absent or
// zero value as zero cents rather than an error.
func parseOptionalAmount(n json.Number) (core.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return core.Money{}, nil
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
