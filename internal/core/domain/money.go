package domain

// CurrencyDetection is one recognized group of bills or coins of a
// single denomination.
type CurrencyDetection struct {
	Currency     string  `json:"currency"`
	Denomination float64 `json:"denomination"`
	Kind         string  `json:"kind"`
	Count        int     `json:"count"`
}

// MoneyAnalysis is the result of one currency-image analysis pass.
// Totals and counts are keyed by currency code and derived from the
// detections, never trusted from the backend reply.
type MoneyAnalysis struct {
	Detections     []CurrencyDetection `json:"detected_currencies"`
	TotalAmounts   map[string]float64  `json:"total_amount"`
	CurrencyCounts map[string]int      `json:"currency_count"`
	Language       Locale              `json:"analysis_language"`
	Explanation    string              `json:"ai_explanation"`
}

// Currency describes one currency the reader recognizes.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// SupportedCurrencies lists the currencies the reader is trained to
// recognize, Gulf currencies alongside USD and EUR.
func SupportedCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$"},
		{Code: "SAR", Name: "Saudi Riyal", Symbol: "ر.س"},
		{Code: "EUR", Name: "Euro", Symbol: "€"},
		{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ"},
		{Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "د.ك"},
		{Code: "QAR", Name: "Qatari Riyal", Symbol: "ر.ق"},
		{Code: "BHD", Name: "Bahraini Dinar", Symbol: "د.ب"},
		{Code: "OMR", Name: "Omani Rial", Symbol: "ر.ع"},
	}
}
