package domain

import (
	"time"
)

// PriceBar is one daily adjusted-close observation for an entity.
type PriceBar struct {
	EntityID string    `json:"entity_id"`
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// BenchmarkBar is one daily close for the benchmark index. The benchmark
// series is forward-filled to a full daily calendar before label
// construction so weekends and holidays carry the last close.
type BenchmarkBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// SharesOutstanding is the share-count reference for one entity. The
// count can be legitimately unavailable ("NA" in the reference file), in
// which case Available is false and market capitalization stays absent
// for the entity.
type SharesOutstanding struct {
	Ticker    string  `json:"ticker"`
	Count     float64 `json:"count"`
	Available bool    `json:"available"`
}

// Entity binds a ticker symbol to its zero-padded 10-digit CIK.
type Entity struct {
	Ticker string `json:"ticker" validate:"required"`
	CIK    string `json:"cik" validate:"required,len=10,numeric"`
}
