package extraction

// ConceptMapping binds one canonical concept to an ordered list of
// source tag synonyms. Order matters: extraction consults the synonyms
// in sequence and the first tag carrying any observations under the
// target unit wins; later synonyms are never consulted for that
// concept, even when they are also populated.
type ConceptMapping struct {
	Concept  string
	Synonyms []string
}

// DefaultConceptMap returns the canonical-concept mapping for US-GAAP
// filings. Equity in particular is reported under several tags
// depending on filer and year, so it carries the longest synonym list.
func DefaultConceptMap() []ConceptMapping {
	return []ConceptMapping{
		{Concept: "assets", Synonyms: []string{"Assets"}},
		{Concept: "liabilities", Synonyms: []string{"Liabilities"}},
		{Concept: "equity", Synonyms: []string{
			"StockholdersEquity",
			"StockholdersEquityIncludingPortionAttributableToParent",
			"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
			"TotalEquityGross",
		}},
		{Concept: "revenue", Synonyms: []string{"Revenues"}},
		{Concept: "cogs", Synonyms: []string{"CostOfRevenue"}},
		{Concept: "net_income", Synonyms: []string{"NetIncomeLoss"}},
		{Concept: "operating_cf", Synonyms: []string{"NetCashProvidedByUsedInOperatingActivities"}},
		{Concept: "capex", Synonyms: []string{"CapitalExpenditures"}},
		{Concept: "eps_diluted", Synonyms: []string{"EarningsPerShareDiluted"}},
	}
}

// firstPopulatedSeries scans the synonym list in order and returns the
// observation list of the first tag with data under the given unit.
// Returns nil when no synonym is populated.
func firstPopulatedSeries(tags map[string]ConceptFacts, synonyms []string, unit string) []Observation {
	for _, tag := range synonyms {
		series := tags[tag].Units[unit]
		if len(series) > 0 {
			return series
		}
	}
	return nil
}
