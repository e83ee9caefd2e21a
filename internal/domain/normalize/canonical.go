package normalize

import "strings"

// dataSourceSynonyms maps a lowercase data-source alias to its canonical
// label.
var dataSourceSynonyms = map[string]string{
	// CRM
	"crm":                                   "CRM data",
	"crm data":                              "CRM data",
	"crmdata":                               "CRM data",
	"customer relationship management":      "CRM data",
	"customer relationship management data": "CRM data",

	// usage
	"usage":           "usage logs",
	"usage logs":      "usage logs",
	"usagelogs":       "usage logs",
	"usage analytics": "usage logs",
	"usage patterns":  "usage logs",

	// support
	"support":         "support tickets",
	"support tickets": "support tickets",
	"supporttickets":  "support tickets",
	"tickets":         "support tickets",

	// billing
	"billing":         "billing data",
	"billing data":    "billing data",
	"billingdata":     "billing data",
	"payment":         "billing data",
	"payment history": "billing data",

	// finance
	"finance":      "finance data",
	"finance data": "finance data",
	"financedata":  "finance data",

	// warehouse
	"data warehouse": "data warehouse",
	"datawarehouse":  "data warehouse",
	"warehouse":      "data warehouse",

	// team performance
	"team performance":         "team performance metrics",
	"team performance metrics": "team performance metrics",
	"teamperformance":          "team performance metrics",
	"workflow metrics":         "team performance metrics",
	"performance":              "team performance metrics",

	// APIs
	"api":           "API logs",
	"api logs":      "API logs",
	"apilogs":       "API logs",
	"external apis": "external APIs",
	"externalapis":  "external APIs",

	// historical
	"historical":      "historical data",
	"historical data": "historical data",
	"historicaldata":  "historical data",

	// communication
	"communication":         "communication history",
	"communication history": "communication history",
	"communicationhistory":  "communication history",
	"meeting notes":         "meeting notes",
	"meetingnotes":          "meeting notes",

	// contracts
	"contract":        "contract terms",
	"contract terms":  "contract terms",
	"contractterms":   "contract terms",
	"renewal":         "renewal history",
	"renewal history": "renewal history",
	"renewalhistory":  "renewal history",

	// training
	"training":         "training records",
	"training records": "training records",
	"trainingrecords":  "training records",
	"feedback":         "feedback forms",
	"feedback forms":   "feedback forms",
	"feedbackforms":    "feedback forms",
}

// Canonicalizer rewrites data-source tokens to canonical labels. The zero
// value passes every token through unchanged.
type Canonicalizer struct {
	table map[string]string
}

var defaultCanonicalizer = Canonicalizer{table: dataSourceSynonyms}

// DefaultCanonicalizer returns the built-in read-only synonym table.
func DefaultCanonicalizer() Canonicalizer {
	return defaultCanonicalizer
}

// Canonicalize returns the canonical label for token, or token itself when
// no alias matches.
func (c Canonicalizer) Canonicalize(token string) string {
	if label, ok := c.table[strings.ToLower(strings.TrimSpace(token))]; ok {
		return label
	}
	return token
}

// Labels returns the distinct canonical labels, unsorted.
func (c Canonicalizer) Labels() []string {
	seen := make(map[string]struct{}, len(c.table))
	out := make([]string, 0, len(c.table))
	for _, label := range c.table {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
