package trackfolio

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okutan/trackfolio/date"
)

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// ErrInvalidTrade rejects trades at construction so bad data never
// reaches the accounting layer.
var ErrInvalidTrade = errors.New("invalid trade")

// timeFormat is the optional intraday ordering hint on a trade.
const timeFormat = "15:04:05"

// Trade is one executed order. Immutable once created.
type Trade struct {
	ID     string    `json:"id"`
	Ticker string    `json:"ticker"`
	Date   date.Date `json:"date"`
	// Time is optional, "15:04:05" form. It only breaks ties between
	// trades on the same day and never shifts a trade across days.
	Time     string   `json:"time,omitempty"`
	Side     Side     `json:"side"`
	Quantity Quantity `json:"quantity"`
	Price    Money    `json:"price"`
}

// NewTrade validates and builds a trade with a fresh id.
func NewTrade(ticker string, day date.Date, at string, side Side, qty Quantity, price Money) (Trade, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Trade{}, fmt.Errorf("%w: empty ticker", ErrInvalidTrade)
	}
	if day.IsZero() {
		return Trade{}, fmt.Errorf("%w: missing date", ErrInvalidTrade)
	}
	if side != Buy && side != Sell {
		return Trade{}, fmt.Errorf("%w: unknown side %q", ErrInvalidTrade, side)
	}
	if !qty.IsPositive() {
		return Trade{}, fmt.Errorf("%w: quantity %s must be positive", ErrInvalidTrade, qty)
	}
	if !price.IsPositive() {
		return Trade{}, fmt.Errorf("%w: price %s must be positive", ErrInvalidTrade, price)
	}
	if at != "" {
		if _, err := time.Parse(timeFormat, at); err != nil {
			return Trade{}, fmt.Errorf("%w: bad time %q: %v", ErrInvalidTrade, at, err)
		}
	}
	return Trade{
		ID:       uuid.NewString(),
		Ticker:   ticker,
		Date:     day,
		Time:     at,
		Side:     side,
		Quantity: qty,
		Price:    price,
	}, nil
}

// Amount is the total traded value, price times quantity.
func (t Trade) Amount() Money { return t.Price.Mul(t.Quantity) }

func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s x %s @ %s", t.Date, t.Side, t.Ticker, t.Quantity, t.Price)
}

// SortTrades orders trades by date, then time with the empty time
// first, keeping insertion order between full ties. Sorts in place.
func SortTrades(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.Time < b.Time
	})
}
