package coverpick

import (
	"net/url"
	"strings"
)

// ImageLicense classifies an image host by copyright risk.
type ImageLicense int

const (
	LicenseSafe    ImageLicense = iota // known free source (unsplash, pixabay, etc.)
	LicenseUnknown                     // no info, usable with caution
	LicenseBlocked                     // stock agency, reject entirely
)

func (l ImageLicense) String() string {
	switch l {
	case LicenseSafe:
		return "safe"
	case LicenseBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// BlockedDomains are stock agencies whose previews are watermarked and
// whose licenses are enforced.
var BlockedDomains = []string{
	"shutterstock",
	"gettyimages",
	"istockphoto",
	"adobestock",
	"stock.adobe",
	"depositphotos",
	"dreamstime",
	"123rf",
	"alamy",
	"bigstockphoto",
	"stocksy",
	"pond5",
	"canstockphoto",
	"masterfile",
	"superstock",
	"agefotostock",
	"vectorstock",
	"freepik",
	"canva.", // trailing dot avoids matching "canvas"
}

// BlockedURLPatterns are path segments of stock photo pages.
var BlockedURLPatterns = []string{
	"/stock-photo",
	"/stock-image",
	"/editorial-image",
	"/premium-photo",
}

// SafeDomains are free / CC / press-kit friendly image hosts.
var SafeDomains = []string{
	"unsplash",
	"pexels",
	"pixabay",
	"wikimedia",
	"flickr",
	"rawpixel",
	"stocksnap",
}

// CheckLicense classifies an image by its URL and the page it was found on.
// Both are checked: a CDN-hosted image may still originate from a stock site.
// extraBlocked uses the same substring semantics as BlockedDomains.
func CheckLicense(imageURL, pageURL string, extraBlocked []string) ImageLicense {
	for _, u := range []string{imageURL, pageURL} {
		if isBlocked(u, extraBlocked) {
			return LicenseBlocked
		}
	}
	for _, u := range []string{imageURL, pageURL} {
		if isSafe(u) {
			return LicenseSafe
		}
	}
	return LicenseUnknown
}

func isBlocked(rawURL string, extra []string) bool {
	if rawURL == "" {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if host != "" {
		for _, d := range BlockedDomains {
			if strings.Contains(host, d) {
				return true
			}
		}
		for _, d := range extra {
			if strings.Contains(host, strings.ToLower(d)) {
				return true
			}
		}
	}
	path := strings.ToLower(parsed.Path)
	for _, p := range BlockedURLPatterns {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

func isSafe(rawURL string) bool {
	host := extractHost(rawURL)
	if host == "" {
		return false
	}
	for _, d := range SafeDomains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
