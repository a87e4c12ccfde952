package validator

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// RegisterCustomValidations adds the watchlist field validators to gin's
// binding engine. Must run once before the router handles requests.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("tickersymbol", validTickerSymbol); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", validISODate)
}

// validTickerSymbol accepts upper-case exchange tickers such as AAPL, BRK.B
// or RDS-A.
func validTickerSymbol(fl validator.FieldLevel) bool {
	return symbolPattern.MatchString(fl.Field().String())
}

// validISODate accepts calendar dates in YYYY-MM-DD form.
func validISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}
