package domain

// ExchangeStatus is the outcome of an authorization code exchange.
type ExchangeStatus string

const (
	// StatusConnected means tokens were stored for the merchant.
	StatusConnected ExchangeStatus = "connected"
	// StatusUnsupported means the merchant category is not allowed; nothing was stored.
	StatusUnsupported ExchangeStatus = "unsupported"
)

// ExchangeResult is returned by a successful exchange call. Failures are errors.
type ExchangeResult struct {
	Status       ExchangeStatus
	MerchantID   string
	CategoryCode string
}

// Connected builds a connected result.
func Connected(merchantID, categoryCode string) *ExchangeResult {
	return &ExchangeResult{Status: StatusConnected, MerchantID: merchantID, CategoryCode: categoryCode}
}

// Unsupported builds an unsupported result.
func Unsupported(categoryCode string) *ExchangeResult {
	return &ExchangeResult{Status: StatusUnsupported, CategoryCode: categoryCode}
}
