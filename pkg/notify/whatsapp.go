package notify

import (
	"net/url"
	"strings"
)

// WhatsAppLink builds a click-to-chat link for the patient to open. Delivery
// happens on the patient's device, so there is no transport behind it.
func WhatsAppLink(mobile, text string) string {
	number := strings.TrimPrefix(IndianE164(mobile), "+")
	link := "https://wa.me/" + number
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link
}
