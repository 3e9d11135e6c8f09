package listing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Blue Door Bakery", "blue-door-bakery"},
		{"Café Crème & Co.", "cafe-creme-co"},
		{"  --Joe's   Pizza!!  ", "joe-s-pizza"},
		{"北京", "listing"},
		{"", "listing"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}

	long := Slugify(strings.Repeat("abc ", 60))
	assert.LessOrEqual(t, len(long), maxSlugLength)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "Coffee Shop", NormalizeCategory("  COFFEE   shop "))
	assert.Equal(t, "", NormalizeCategory("   "))
}

func TestHours_OpenAt(t *testing.T) {
	h := Hours{
		"monday": {Open: "09:00", Close: "17:00"},
		"friday": {Open: "18:00", Close: "02:00"},
		"sunday": {Closed: true},
	}
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, h.OpenAt(monday))
	assert.False(t, h.OpenAt(monday.Add(8*time.Hour)))

	friday := time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC)
	assert.True(t, h.OpenAt(friday))

	sunday := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	assert.False(t, h.OpenAt(sunday))

	tuesday := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	assert.False(t, h.OpenAt(tuesday))
}
