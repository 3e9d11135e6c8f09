package builder

import (
	"github.com/bizdir/backend/internal/domain/listing"
)

// ToDetails converts the draft into editable listing details.
// Unknown price ranges are dropped rather than rejected.
func (d ListingDraft) ToDetails() listing.Details {
	pr := listing.PriceRange(d.PriceRange)
	if !pr.IsValid() {
		pr = listing.PriceRangeUnknown
	}
	hours := listing.Hours{}
	for day, h := range d.Hours {
		if (listing.Hours{day: h}).Validate() == nil {
			hours[day] = h
		}
	}
	return listing.Details{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        d.Tags,
		Location:    d.Location,
		Contact:     d.Contact,
		Hours:       hours,
		Amenities:   d.Amenities,
		PriceRange:  pr,
	}
}
