package models

import "time"

// RangeFilter narrows ledger listings to records that occurred within
// [From, To]. Nil bounds are open.
type RangeFilter struct {
	From *time.Time
	To   *time.Time
}
