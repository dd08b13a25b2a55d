package record

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadySold = errors.New("record is already sold")
	ErrNotVisible  = errors.New("record is not visible")
)

// Record is a unique, single-copy catalog item. Once sold it is
// terminal: no reservation or queue mutation may target it again.
type Record struct {
	id         uuid.UUID
	artist     string
	title      string
	priceCents int64
	visible    bool
	sold       bool
	soldAt     *time.Time
}

func ReconstructRecord(
	id uuid.UUID,
	artist, title string,
	priceCents int64,
	visible, sold bool,
	soldAt *time.Time,
) *Record {
	return &Record{
		id:         id,
		artist:     artist,
		title:      title,
		priceCents: priceCents,
		visible:    visible,
		sold:       sold,
		soldAt:     soldAt,
	}
}

func (r *Record) ID() uuid.UUID     { return r.id }
func (r *Record) Artist() string    { return r.artist }
func (r *Record) Title() string     { return r.title }
func (r *Record) PriceCents() int64 { return r.priceCents }
func (r *Record) Visible() bool     { return r.visible }
func (r *Record) Sold() bool        { return r.sold }

// SoldAt is nil until the record is sold and immutable afterwards.
func (r *Record) SoldAt() *time.Time { return r.soldAt }
