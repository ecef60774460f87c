package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PayloadShape is the outcome of classifying a raw webhook payload
type PayloadShape int

const (
	// ShapeStructured is an object already split into named arrays
	ShapeStructured PayloadShape = iota
	// ShapeMixed is a flat array holding more than one record type
	ShapeMixed
	// ShapeSingleType is a flat array where only one record type is recognizable
	ShapeSingleType
	// ShapeEmpty is an empty array (the webhook had nothing to report)
	ShapeEmpty
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeStructured:
		return "structured"
	case ShapeMixed:
		return "mixed"
	case ShapeSingleType:
		return "single-type"
	case ShapeEmpty:
		return "empty"
	default:
		return fmt.Sprintf("PayloadShape(%d)", int(s))
	}
}

// RecordKind identifies a webhook record by its marker fields
type RecordKind int

const (
	KindUnknown RecordKind = iota
	KindConversation
	KindAppointment
	KindOrder
)

func (k RecordKind) String() string {
	switch k {
	case KindConversation:
		return "conversation"
	case KindAppointment:
		return "appointment"
	case KindOrder:
		return "order"
	default:
		return "unknown"
	}
}

// Partition holds the rows of a payload split by record type
type Partition struct {
	Conversations []ConversationRow `json:"conversations"`
	Appointments  []AppointmentRow  `json:"appointments"`
	Orders        []OrderRow        `json:"orders,omitempty"`
	// Demo marks synthetic data produced by the demo generator
	Demo bool `json:"demo,omitempty"`
}

// Merge appends other's rows to a copy of p
func (p Partition) Merge(other Partition) Partition {
	return Partition{
		Conversations: append(append([]ConversationRow(nil), p.Conversations...), other.Conversations...),
		Appointments:  append(append([]AppointmentRow(nil), p.Appointments...), other.Appointments...),
		Orders:        append(append([]OrderRow(nil), p.Orders...), other.Orders...),
		Demo:          p.Demo || other.Demo,
	}
}

// Copy returns a deep copy of the partition
func (p Partition) Copy() Partition {
	return Partition{}.Merge(p)
}

// Classification is the result of Classify
type Classification struct {
	Shape PayloadShape
	// Kind is set for ShapeSingleType
	Kind      RecordKind
	Partition Partition
	// Dropped counts records discarded because no marker matched (mixed arrays only)
	Dropped int
}

// DecodePayload parses a JSON body. An empty body and invalid JSON are reported
// as distinct TransportError kinds.
func DecodePayload(body []byte, source string) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &TransportError{Kind: TransportEmpty, Endpoint: source}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &TransportError{Kind: TransportMalformed, Endpoint: source, Err: err}
	}
	if dec.More() {
		return nil, &TransportError{Kind: TransportMalformed, Endpoint: source, Err: fmt.Errorf("trailing data after JSON value")}
	}

	return payload, nil
}

// DetectRecordKind checks a record for the marker field pairs of each type
func DetectRecordKind(rec map[string]any) RecordKind {
	switch {
	case has(rec, fieldConversationID) && has(rec, fieldUserMessage):
		return KindConversation
	case has(rec, fieldStatus) && has(rec, fieldName):
		return KindAppointment
	case has(rec, fieldCustomerPhone) && has(rec, fieldProducts):
		return KindOrder
	default:
		return KindUnknown
	}
}

// Classify decides which tolerated shape payload has and splits it into a Partition.
// Payloads matching no shape yield a *ShapeError.
func Classify(payload any) (*Classification, error) {
	switch v := payload.(type) {
	case map[string]any:
		return classifyObject(v)
	case []any:
		return classifyArray(v)
	case nil:
		return nil, &ShapeError{Shape: "null"}
	default:
		return nil, &ShapeError{Shape: fmt.Sprintf("%T", v)}
	}
}

var structuredKeys = map[string]RecordKind{
	"conversations": KindConversation,
	"appointments":  KindAppointment,
	"orders":        KindOrder,
}

func classifyObject(obj map[string]any) (*Classification, error) {
	result := &Classification{Shape: ShapeStructured}
	matched := false

	for key, kind := range structuredKeys {
		raw, ok := obj[key]
		if !ok || raw == nil {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, &ShapeError{Shape: "object", Detail: fmt.Sprintf("%q must be an array, got %T", key, raw)}
		}
		matched = true
		records := objects(items, key)
		appendRecords(&result.Partition, kind, records)
	}

	if !matched {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		return nil, &ShapeError{Shape: "object", Detail: "no conversations, appointments or orders array among keys " + strings.Join(sortedCopy(keys), ", ")}
	}

	if demo, ok := obj["demo"].(bool); ok {
		result.Partition.Demo = demo
	}

	return result, nil
}

func classifyArray(items []any) (*Classification, error) {
	if len(items) == 0 {
		return &Classification{Shape: ShapeEmpty}, nil
	}

	records := objects(items, "payload")
	if len(records) == 0 {
		return nil, &ShapeError{Shape: "array", Detail: "array holds no JSON objects"}
	}

	kinds := make([]RecordKind, len(records))
	seen := make(map[RecordKind]int)
	for i, rec := range records {
		kinds[i] = DetectRecordKind(rec)
		if kinds[i] != KindUnknown {
			seen[kinds[i]]++
		}
	}

	switch len(seen) {
	case 0:
		return nil, &ShapeError{Shape: "array of unrecognized records", Detail: fmt.Sprintf("%d record(s) without conversation, appointment or order marker fields", len(records))}
	case 1:
		// Legacy mode: the whole array is the one recognizable type
		var kind RecordKind
		for k := range seen {
			kind = k
		}
		result := &Classification{Shape: ShapeSingleType, Kind: kind}
		appendRecords(&result.Partition, kind, records)
		return result, nil
	default:
		result := &Classification{Shape: ShapeMixed}
		for i, rec := range records {
			if kinds[i] == KindUnknown {
				result.Dropped++
				continue
			}
			appendRecords(&result.Partition, kinds[i], []map[string]any{rec})
		}
		if result.Dropped > 0 {
			LogDebug("Dropped %d unrecognized record(s) from mixed payload", result.Dropped)
		}
		return result, nil
	}
}

// objects keeps the JSON objects of items, logging anything else
func objects(items []any, where string) []map[string]any {
	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			LogWarn("Skipping non-object item %d in %s (%T)", i, where, item)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func appendRecords(p *Partition, kind RecordKind, records []map[string]any) {
	for _, rec := range records {
		switch kind {
		case KindConversation:
			p.Conversations = append(p.Conversations, decodeConversation(rec))
		case KindAppointment:
			p.Appointments = append(p.Appointments, decodeAppointment(rec))
		case KindOrder:
			p.Orders = append(p.Orders, decodeOrder(rec))
		}
	}
}
