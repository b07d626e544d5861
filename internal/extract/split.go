package extract

import "strings"

// SplitCityCountry decomposes a compound locality cell like
// "New York, NY, United States" into (city, country) by splitting on the
// last comma. City names may themselves contain commas ("Washington,
// DC"), so the greedy last-comma rule keeps the full locality in city
// while preserving the country suffix.
//
// A value without a comma is returned whole as the city with an empty
// country. Both components are trimmed of surrounding whitespace.
func SplitCityCountry(value string) (city, country string) {
	s := strings.TrimSpace(value)

	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}
