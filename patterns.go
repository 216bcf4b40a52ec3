package coverpick

import (
	"strings"
	"unicode"
)

// LogoBannerPatterns are URL words of images that are never usable as a
// header photo.
var LogoBannerPatterns = []string{
	"favicon", "logo", "icon", "banner", "sprite",
	"badge", "button", "avatar", "placeholder", "thumbnail",
}

// IsLogoOrBanner reports whether a lowercased URL looks like a logo, icon or banner.
// Patterns match whole words of the URL ("logo", "logos", "icon32"), so
// "silicon-valley.jpg" and "iconic-tower.jpg" are kept.
func IsLogoOrBanner(lower string) bool {
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		w = strings.TrimRightFunc(w, unicode.IsDigit)
		for _, p := range LogoBannerPatterns {
			if w == p || w == p+"s" {
				return true
			}
		}
	}
	return false
}
