package reconcile

import (
	"fmt"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
)

// factsText renders extracted facts as a snippet body. keywords is the
// filter list, which already includes the entity's own names.
func factsText(kind model.Kind, f model.Facts, keywords []string) string {
	var lines []string
	switch kind {
	case model.KindPark:
		if f.Name != nil {
			lines = append(lines, "Name from official site (AI): "+*f.Name)
		}
		var loc []string
		for _, part := range []*string{f.LocationCity, f.LocationCountry} {
			if part != nil && *part != "" {
				loc = append(loc, *part)
			}
		}
		if len(loc) > 0 {
			lines = append(lines, "Location from official site (AI): "+strings.Join(loc, ", "))
		}
		if f.OpeningYear != nil {
			lines = append(lines, fmt.Sprintf("Opening year (from official site, AI): %d", *f.OpeningYear))
		}
		if len(keywords) > 0 {
			lines = append(lines, "Keywords: "+strings.Join(head(keywords, 20), ", "))
		}
		if len(f.MentionedCoasters) > 0 {
			lines = append(lines, "Notable coasters (from official site, AI): "+strings.Join(head(f.MentionedCoasters, 20), ", "))
		}
	case model.KindManufacturer:
		if f.Name != nil {
			lines = append(lines, "Name (from website text): "+*f.Name)
		}
		if f.LocationCountry != nil {
			lines = append(lines, "Country (from website text): "+*f.LocationCountry)
		}
		if f.OpeningYear != nil {
			lines = append(lines, fmt.Sprintf("Founded/opening year (from website text): %d", *f.OpeningYear))
		}
		if len(f.RideTypes) > 0 {
			lines = append(lines, "Ride types: "+strings.Join(head(f.RideTypes, 20), ", "))
		}
		if len(f.NotableCoasters) > 0 {
			lines = append(lines, "Notable coasters (from website text): "+strings.Join(head(f.NotableCoasters, 25), ", "))
		}
		if len(f.NotableParks) > 0 {
			lines = append(lines, "Notable parks (from website text): "+strings.Join(head(f.NotableParks, 25), ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
