package v1

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/history"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/sync"
)

// PropertyView is the API form of a property value
type PropertyView struct {
	Name       string              `json:"name"`
	Type       attribute.ValueType `json:"type"`
	Value      json.RawMessage     `json:"value"`
	LastUpdate time.Time           `json:"lastUpdate"`
}

// BatchResponse is the outcome of a refresh
type BatchResponse struct {
	CycleID   string         `json:"cycleId"`
	Target    string         `json:"target"`
	Timestamp time.Time      `json:"timestamp"`
	Rows      []PropertyView `json:"rows"`
	Warnings  []sync.Warning `json:"warnings"`
}

// DemandReadResponse is the outcome of a demand read
type DemandReadResponse struct {
	Property  *PropertyView `json:"property"`
	Refreshed bool          `json:"refreshed"`
	Warning   *sync.Warning `json:"warning,omitempty"`
}

// HistoryEntryView is one recorded value of a property
type HistoryEntryView struct {
	Attribute string              `json:"attribute"`
	Timestamp time.Time           `json:"timestamp"`
	Type      attribute.ValueType `json:"type"`
	Value     json.RawMessage     `json:"value"`
}

// SuggestRequest is the body of a definition suggestion request
type SuggestRequest struct {
	Rows   []service.AttributeInfoRow `json:"rows"`
	Logged bool                       `json:"logged"`
}

// MacroResetResponse reports the object a macro resolves to after a reset
type MacroResetResponse struct {
	Token      string `json:"token"`
	ObjectName string `json:"objectName"`
}

// ListResponse wraps a list result with its count
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

func propertyView(name string, v attribute.Value, lastUpdate time.Time) (PropertyView, error) {
	env, err := attribute.Encode(v)
	if err != nil {
		return PropertyView{}, err
	}
	return PropertyView{Name: name, Type: env.Type, Value: json.RawMessage(env.Value), LastUpdate: lastUpdate}, nil
}

func stateViews(states []attribute.State) ([]PropertyView, error) {
	views := make([]PropertyView, 0, len(states))
	for _, st := range states {
		view, err := propertyView(st.Name, st.Value, st.LastUpdate)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func batchResponse(result *sync.BatchResult) (*BatchResponse, error) {
	resp := &BatchResponse{
		CycleID:   result.CycleID,
		Target:    result.Target,
		Timestamp: result.Timestamp,
		Rows:      make([]PropertyView, 0, len(result.Rows)),
		Warnings:  result.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []sync.Warning{}
	}
	for _, row := range result.Rows {
		view, err := propertyView(row.Name, row.Value, row.Timestamp)
		if err != nil {
			return nil, err
		}
		resp.Rows = append(resp.Rows, view)
	}
	return resp, nil
}

func historyViews(entries []history.Entry) ([]HistoryEntryView, error) {
	views := make([]HistoryEntryView, 0, len(entries))
	for _, e := range entries {
		env, err := attribute.Encode(e.Value)
		if err != nil {
			return nil, err
		}
		views = append(views, HistoryEntryView{
			Attribute: e.Attribute,
			Timestamp: e.Timestamp,
			Type:      env.Type,
			Value:     json.RawMessage(env.Value),
		})
	}
	return views, nil
}
