package model

import "time"

// Time slot values as supplied by the upstream calendar feed.
const (
	TimePreMarket   = "time-pre-market"
	TimeAfterHours  = "time-after-hours"
	TimeNotSupplied = "time-not-supplied"
)

// Earning represents one company's scheduled earnings report.
// (symbol, reportDate) uniquely identifies a record; re-ingesting the same
// pair updates it in place.
type Earning struct {
	Symbol              string    `db:"symbol" json:"symbol"`
	CompanyName         string    `db:"company_name" json:"companyName"`
	ReportDate          string    `db:"report_date" json:"reportDate"`
	Time                string    `db:"time_slot" json:"time"`
	EstimatedEPS        string    `db:"estimated_eps" json:"estimatedEps"`
	LastYearEPS         string    `db:"last_year_eps" json:"lastYearEps"`
	LastYearReportDate  string    `db:"last_year_report_date" json:"lastYearReportDate"`
	FiscalQuarterEnding string    `db:"fiscal_quarter_ending" json:"fiscalQuarterEnding"`
	MarketCap           string    `db:"market_cap" json:"marketCap"`
	NumberOfEstimates   string    `db:"number_of_estimates" json:"numberOfEstimates"`
	CreatedAt           time.Time `db:"created_at" json:"-"`
	UpdatedAt           time.Time `db:"updated_at" json:"-"`
}

// RawEarningsRow is the loosely shaped row returned by the upstream calendar
// endpoint. Any field may be missing upstream; the feed client stamps
// ReportDate and leaves absent fields as empty strings so this shape never
// carries undefined values past the client package.
type RawEarningsRow struct {
	Symbol              string `json:"symbol"`
	Name                string `json:"name"`
	Time                string `json:"time"`
	ReportDate          string `json:"reportDate"`
	LastYearRptDt       string `json:"lastYearRptDt"`
	LastYearEPS         string `json:"lastYearEPS"`
	EPSForecast         string `json:"epsForecast"`
	FiscalQuarterEnding string `json:"fiscalQuarterEnding"`
	MarketCap           string `json:"marketCap"`
	NoOfEsts            string `json:"noOfEsts"`
}

// EarningFromRow converts a normalized upstream row into the strict Earning
// shape. Rows missing a time slot are treated as time-not-supplied.
func EarningFromRow(row RawEarningsRow) Earning {
	timeSlot := row.Time
	if timeSlot == "" {
		timeSlot = TimeNotSupplied
	}

	return Earning{
		Symbol:              row.Symbol,
		CompanyName:         row.Name,
		ReportDate:          row.ReportDate,
		Time:                timeSlot,
		EstimatedEPS:        row.EPSForecast,
		LastYearEPS:         row.LastYearEPS,
		LastYearReportDate:  row.LastYearRptDt,
		FiscalQuarterEnding: row.FiscalQuarterEnding,
		MarketCap:           row.MarketCap,
		NumberOfEstimates:   row.NoOfEsts,
	}
}
