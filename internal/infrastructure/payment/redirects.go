package payment

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Redirects builds the storefront URLs gateways send the customer back to
type Redirects struct {
	ServerURL string
}

// ThankYou is where the customer lands after paying or placing a COD order
func (r Redirects) ThankYou(orderID uuid.UUID) string {
	return r.join("/thank-you", url.Values{"orderId": {orderID.String()}})
}

// Preview is where an abandoned card checkout returns to
func (r Redirects) Preview(configurationID uuid.UUID) string {
	return r.join("/configure/preview", url.Values{"id": {configurationID.String()}})
}

func (r Redirects) join(path string, q url.Values) string {
	return strings.TrimRight(r.ServerURL, "/") + path + "?" + q.Encode()
}
