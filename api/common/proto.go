package common

import "github.com/hrishi045/segstore/lib/store"

// --------------------------------------------------------------------------
// Wire Envelopes
// --------------------------------------------------------------------------

// StatusResponse is the body of every successful write operation.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a human-readable failure description.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RangeItem is one record in a range-read response. Data is a []byte
// and therefore marshals as base64 in JSON.
type RangeItem struct {
	Key  []string `json:"key"`
	Data []byte   `json:"data"`
}

// --------------------------------------------------------------------------
// Envelope Factory Functions
// --------------------------------------------------------------------------

// NewStatusOK creates the canonical success response.
func NewStatusOK() StatusResponse {
	return StatusResponse{Status: "ok"}
}

// NewErrorResponse creates an error response with the given detail.
func NewErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

// NewRangeResponse converts store records into their wire form. The
// result is never nil so an empty range marshals as [] rather than null.
func NewRangeResponse(records []store.Record) []RangeItem {
	items := make([]RangeItem, 0, len(records))
	for _, record := range records {
		items = append(items, RangeItem{
			Key:  record.Key,
			Data: record.Value,
		})
	}
	return items
}

// Records converts wire items back into store records (client side).
func Records(items []RangeItem) []store.Record {
	records := make([]store.Record, 0, len(items))
	for _, item := range items {
		records = append(records, store.Record{
			Key:   item.Key,
			Value: item.Data,
		})
	}
	return records
}
