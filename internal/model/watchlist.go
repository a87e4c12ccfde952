package model

// Watchlist toggle actions accepted by the API.
const (
	WatchActionAdd    = "add"
	WatchActionRemove = "remove"
)

// WatchEntry marks a user's subscription to a specific earnings report.
type WatchEntry struct {
	UserID     int    `db:"user_id" json:"-"`
	Symbol     string `db:"symbol" json:"symbol"`
	ReportDate string `db:"report_date" json:"reportDate"`
}

// WatchTarget identifies the earnings report being watched or unwatched.
type WatchTarget struct {
	Symbol     string `json:"symbol" binding:"required,tickersymbol"`
	ReportDate string `json:"reportDate" binding:"required,isodate"`
}

// WatchlistRequest is the body of the watchlist toggle endpoint.
type WatchlistRequest struct {
	Earning WatchTarget `json:"earning" binding:"required"`
	Action  string      `json:"action" binding:"required,oneof=add remove"`
}
