package catalog

import (
	"strings"

	"classifieds/internal/domain"
)

// ContactLink builds the deep link for channel from the advertiser's
// stored handle.
func ContactLink(a *domain.AdvertiserProfile, channel string) (string, error) {
	if a == nil {
		return "", domain.Invalid("channel", "advertiser has no contact details")
	}
	switch channel {
	case "whatsapp":
		digits := onlyDigits(deref(a.Whatsapp))
		if digits == "" {
			return "", domain.Invalid("channel", "whatsapp is not available for this listing")
		}
		return "https://wa.me/" + digits, nil
	case "telegram":
		handle := strings.TrimPrefix(strings.TrimSpace(deref(a.Telegram)), "@")
		if handle == "" {
			return "", domain.Invalid("channel", "telegram is not available for this listing")
		}
		return "https://t.me/" + handle, nil
	case "instagram":
		handle := strings.TrimPrefix(strings.TrimSpace(deref(a.Instagram)), "@")
		if handle == "" {
			return "", domain.Invalid("channel", "instagram is not available for this listing")
		}
		return "https://instagram.com/" + handle, nil
	}
	return "", domain.Invalid("channel", "unknown contact channel")
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
