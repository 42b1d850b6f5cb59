package domain

import "strings"

// Office is a branch location that can be a parcel's source or destination.
// Immutable once loaded; the full set is replaced wholesale on bootstrap.
type Office struct {
	ID          string
	DisplayName string
	ShortCode   string
}

// NewOffice builds an office from the directory boundary's slug/title pair.
// The short code is the upper-cased first three characters of the slug.
func NewOffice(slug, title string) Office {
	code := slug
	if len(code) > 3 {
		code = code[:3]
	}
	return Office{ID: slug, DisplayName: title, ShortCode: strings.ToUpper(code)}
}

// Organization is the tenant the service runs for.
type Organization struct {
	Slug  string
	Title string
}
