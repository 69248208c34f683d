package coordinator

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Record pairs one show request's duration with a non-owning reference to
// the widget that asked for it. Records are immutable after construction
// and identified by the underlying callback object, not by value.
type Record struct {
	id        ulid.ULID
	duration  Duration
	ref       Ref
	createdAt time.Time
}

func newRecord(d Duration, ref Ref) *Record {
	return &Record{
		id:        ulid.Make(),
		duration:  d,
		ref:       ref,
		createdAt: time.Now(),
	}
}

// ID returns the record's ULID, used for log correlation.
func (r *Record) ID() string {
	return r.id.String()
}

// Duration returns the requested display duration.
func (r *Record) Duration() Duration {
	return r.duration
}

// CreatedAt returns when the show request arrived.
func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

// is reports whether cb is this record's live referent.
func (r *Record) is(cb Callback) bool {
	return cb != nil && r.ref.Get() == cb
}
