package event

import (
	"encoding/json"
	"fmt"
)

// UnmarshalEvents decodes a JSON array of event objects. Each object needs a
// "type" discriminator, a "date", and the type-specific fields.
func UnmarshalEvents(data []byte) ([]Event, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("events must be a JSON array: %w", err)
	}

	events := make([]Event, 0, len(raws))
	for i, raw := range raws {
		ev, err := unmarshalEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func unmarshalEvent(raw json.RawMessage) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid event object: %w", err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("missing required property 'type'")
	}

	var ev Event
	switch envelope.Type {
	case "AccountCreated":
		ev = &AccountCreated{}
	case "AccountTransaction":
		ev = &AccountTransaction{}
	case "AdvancePayment":
		ev = &AdvancePayment{}
	case "BillCreated":
		ev = &BillCreated{}
	case "BillAdded":
		ev = &BillAdded{}
	case "CorrectNextLoanPayment":
		ev = &CorrectNextLoanPayment{}
	case "CorrectNextLoanPaymentSplit":
		ev = &CorrectNextLoanPaymentSplit{}
	case "InterestRateChanged":
		ev = &InterestRateChanged{}
	case "LoanContracted":
		ev = &LoanContracted{}
	case "LoanPayment":
		ev = &LoanPayment{}
	default:
		return nil, fmt.Errorf("unknown event type %q", envelope.Type)
	}

	if err := json.Unmarshal(raw, ev); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", envelope.Type, err)
	}
	return ev, nil
}

// MarshalEvents encodes events as a JSON array, each object carrying its
// "type" discriminator alongside the event fields.
func MarshalEvents(events []Event) ([]byte, error) {
	wrapped := make([]any, len(events))
	for i, ev := range events {
		w, err := wrapEvent(ev)
		if err != nil {
			return nil, err
		}
		wrapped[i] = w
	}
	return json.Marshal(wrapped)
}

func wrapEvent(ev Event) (any, error) {
	switch e := ev.(type) {
	case *AccountCreated:
		return struct {
			Type string `json:"type"`
			*AccountCreated
		}{e.EventType(), e}, nil
	case *AccountTransaction:
		return struct {
			Type string `json:"type"`
			*AccountTransaction
		}{e.EventType(), e}, nil
	case *AdvancePayment:
		return struct {
			Type string `json:"type"`
			*AdvancePayment
		}{e.EventType(), e}, nil
	case *BillCreated:
		return struct {
			Type string `json:"type"`
			*BillCreated
		}{e.EventType(), e}, nil
	case *BillAdded:
		return struct {
			Type string `json:"type"`
			*BillAdded
		}{e.EventType(), e}, nil
	case *CorrectNextLoanPayment:
		return struct {
			Type string `json:"type"`
			*CorrectNextLoanPayment
		}{e.EventType(), e}, nil
	case *CorrectNextLoanPaymentSplit:
		return struct {
			Type string `json:"type"`
			*CorrectNextLoanPaymentSplit
		}{e.EventType(), e}, nil
	case *InterestRateChanged:
		return struct {
			Type string `json:"type"`
			*InterestRateChanged
		}{e.EventType(), e}, nil
	case *LoanContracted:
		return struct {
			Type string `json:"type"`
			*LoanContracted
		}{e.EventType(), e}, nil
	case *LoanPayment:
		return struct {
			Type string `json:"type"`
			*LoanPayment
		}{e.EventType(), e}, nil
	default:
		return nil, fmt.Errorf("cannot serialize event type %T", ev)
	}
}
