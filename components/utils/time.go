package utils

import (
	"fmt"
	"time"
)

func FormatTimestamp(t time.Time) string {
	now := time.Now()
	if IsSameDay(t, now) {
		return "Today at " + t.Format("15:04")
	}
	yesterday := now.AddDate(0, 0, -1)
	if IsSameDay(t, yesterday) {
		return "Yesterday at " + t.Format("15:04")
	}
	return t.Format("02.01.2006 15:04")
}

func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatAmount renders an amount in minor units, e.g. 9900 RUB as "99.00 RUB".
func FormatAmount(minor int, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	s := fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
	if currency != "" {
		s += " " + currency
	}
	return s
}

func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
