package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

var (
	// ErrMalformedPayload indicates a message body that could not be
	// decoded. The caller logs and drops it; there is no retry and no
	// dead-letter queue.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoCategory indicates a decodable payload with no event_type
	// field. The message is inert.
	ErrNoCategory = errors.New("no event_type in payload")
)

// EnrichedEvent is an Event plus derived temporal metadata. It is created
// once per valid message and immutable afterwards; both sinks consume it
// independently.
type EnrichedEvent struct {
	Event Event

	// ProcessedAt is the wall-clock time of enrichment.
	ProcessedAt time.Time

	// EventTime is the event's own timestamp when the source supplied
	// one, otherwise ProcessedAt. Object-store paths are derived from it.
	EventTime time.Time

	// PartitionDate is the calendar date of EventTime, used to bucket
	// warehouse rows.
	PartitionDate time.Time
}

// MarshalJSON emits the source payload fields plus processed_timestamp
// and event_date. Both sinks serialize events through this.
func (e EnrichedEvent) MarshalJSON() ([]byte, error) {
	var payload []byte
	var err error
	if u, ok := e.Event.(UnknownEvent); ok {
		payload = u.Payload
	} else {
		payload, err = sonic.ConfigStd.Marshal(e.Event)
		if err != nil {
			return nil, err
		}
	}
	fields := map[string]json.RawMessage{}
	if err := sonic.ConfigStd.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	processed, err := sonic.ConfigStd.Marshal(e.ProcessedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	date, err := sonic.ConfigStd.Marshal(e.PartitionDate.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	fields["processed_timestamp"] = processed
	fields["event_date"] = date
	return sonic.ConfigStd.Marshal(fields)
}

// Enricher turns raw bus messages into enriched events.
type Enricher struct {
	now func() time.Time
}

func NewEnricher() *Enricher { return &Enricher{now: time.Now} }

// Enrich decodes raw into a typed event and derives its temporal metadata.
// It returns ErrMalformedPayload when the body cannot be decoded and
// ErrNoCategory when event_type is absent; payload shape beyond that is
// not validated.
func (e *Enricher) Enrich(raw []byte) (*EnrichedEvent, error) {
	var probe struct {
		EventType string `json:"event_type"`
	}
	if err := sonic.ConfigStd.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if probe.EventType == "" {
		return nil, ErrNoCategory
	}

	var ev Event
	switch Category(probe.EventType) {
	case CategoryOrder:
		var o OrderEvent
		if err := sonic.ConfigStd.Unmarshal(raw, &o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		ev = o
	case CategoryInventory:
		var i InventoryEvent
		if err := sonic.ConfigStd.Unmarshal(raw, &i); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		ev = i
	case CategoryUserActivity:
		var u UserActivityEvent
		if err := sonic.ConfigStd.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		ev = u
	default:
		ev = UnknownEvent{EventType: probe.EventType, Payload: append([]byte(nil), raw...)}
	}

	processedAt := e.now().UTC()
	eventTime := processedAt
	if ts, ok := ev.OccurredAt(); ok {
		eventTime = ts.UTC()
	}
	return &EnrichedEvent{
		Event:         ev,
		ProcessedAt:   processedAt,
		EventTime:     eventTime,
		PartitionDate: eventTime.Truncate(24 * time.Hour),
	}, nil
}
