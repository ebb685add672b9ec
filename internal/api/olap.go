package api

const (
	// ReportTypeSales selects the sales cube
	ReportTypeSales = "SALES"
	// FilterTypeDateRange restricts a date field to a period
	FilterTypeDateRange = "DateRange"
	// FilterTypeIncludeValues keeps only the listed values
	FilterTypeIncludeValues = "IncludeValues"
	// PeriodCurrentMonth spans the 1st of the month up to To
	PeriodCurrentMonth = "CURRENT_MONTH"
	// NotDeleted is the OrderDeleted value of live orders
	NotDeleted = "NOT_DELETED"
)

// OlapRequest is the body of POST /v2/reports/olap.
type OlapRequest struct {
	// ReportType is the cube, see ReportTypeSales
	ReportType string `json:"reportType"`
	// GroupByRowFields are the row dimensions
	GroupByRowFields []string `json:"groupByRowFields"`
	// GroupByColFields are the column dimensions
	GroupByColFields []string `json:"groupByColFields"`
	// AggregateFields are the summed measures
	AggregateFields []string `json:"aggregateFields"`
	// Filters maps a field name to its filter
	Filters map[string]Filter `json:"filters"`
}

// Filter is tagged by FilterType; only the fields of that type are sent.
type Filter struct {
	// FilterType is one of the FilterType constants
	FilterType string `json:"filterType"`
	// PeriodType is set for date range filters
	PeriodType string `json:"periodType,omitempty"`
	// To is the inclusive end date for date range filters
	To string `json:"to,omitempty"`
	// Values are the accepted values for include filters
	Values []string `json:"values,omitempty"`
}

// DateRangeFilter builds a DateRange filter.
//
// Parameters:
//   - periodType: iiko period such as PeriodCurrentMonth
//   - to: end date in dates.Layout
//
// Returns:
//   - Filter: filter ready for OlapRequest.Filters
func DateRangeFilter(periodType, to string) Filter {
	return Filter{FilterType: FilterTypeDateRange, PeriodType: periodType, To: to}
}

// IncludeValuesFilter builds an IncludeValues filter over values.
func IncludeValuesFilter(values ...string) Filter {
	return Filter{FilterType: FilterTypeIncludeValues, Values: values}
}
