package models

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidDateRange is returned when check-out is not after check-in
var ErrInvalidDateRange = errors.New("check-out date must be after check-in date")

// Day is the unit nights are counted in
const Day = 24 * time.Hour

// DateRange is a half-open stay interval [CheckIn, CheckOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange builds a range, requiring checkIn < checkOut
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	if !checkIn.Before(checkOut) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// Overlaps reports whether two half-open ranges share any instant
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// Nights is the number of started days in the range, never less than 1
func (r DateRange) Nights() int {
	span := r.CheckOut.Sub(r.CheckIn)
	nights := int(span / Day)
	if span%Day != 0 {
		nights++
	}
	if nights < 1 {
		return 1
	}
	return nights
}

// PriceFor returns nightly price times nights, rounded to cents
func (r DateRange) PriceFor(nightlyPrice float64) float64 {
	return math.Round(nightlyPrice*float64(r.Nights())*100) / 100
}
