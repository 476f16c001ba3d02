package ports

import (
	"context"
	"time"

	"github.com/fixora/assetdash/internal/domain"
)

// RecordKind names one of the record collections analytics reads from
type RecordKind string

const (
	RecordKindAssets      RecordKind = "assets"
	RecordKindAssetEvents RecordKind = "asset_events"
	RecordKindAssetIssues RecordKind = "asset_issues"
)

// Operator is a predicate comparison
type Operator string

const (
	OpEqual     Operator = "eq"
	OpGreaterEq Operator = "gte"
	OpLessEq    Operator = "lte"
	OpIn        Operator = "in"
	OpSearch    Operator = "search"
	OpOrderAsc  Operator = "order_asc"
	OpOrderDesc Operator = "order_desc"
	OpLimit     Operator = "limit"
	OpOffset    Operator = "offset"
)

// Predicate is one filter, ordering or paging instruction for ListRecords
type Predicate struct {
	Op    Operator
	Field string
	Value interface{}
}

// Eq matches records whose field equals value
func Eq(field string, value interface{}) Predicate {
	return Predicate{Op: OpEqual, Field: field, Value: value}
}

// Gte matches records whose field is greater than or equal to value
func Gte(field string, value interface{}) Predicate {
	return Predicate{Op: OpGreaterEq, Field: field, Value: value}
}

// Lte matches records whose field is less than or equal to value
func Lte(field string, value interface{}) Predicate {
	return Predicate{Op: OpLessEq, Field: field, Value: value}
}

// In matches records whose field is one of values
func In(field string, values []string) Predicate {
	return Predicate{Op: OpIn, Field: field, Value: values}
}

// Search matches records whose field contains the text, case-insensitively
func Search(field, text string) Predicate {
	return Predicate{Op: OpSearch, Field: field, Value: text}
}

// OrderAsc sorts ascending by field
func OrderAsc(field string) Predicate {
	return Predicate{Op: OpOrderAsc, Field: field}
}

// OrderDesc sorts descending by field
func OrderDesc(field string) Predicate {
	return Predicate{Op: OpOrderDesc, Field: field}
}

// Limit caps the number of returned records
func Limit(n int) Predicate {
	return Predicate{Op: OpLimit, Value: n}
}

// Offset skips the first n records
func Offset(n int) Predicate {
	return Predicate{Op: OpOffset, Value: n}
}

// Between is shorthand for an inclusive range on a time field
func Between(field string, start, end time.Time) []Predicate {
	return []Predicate{Gte(field, start), Lte(field, end)}
}

// RecordPage is one page of documents from ListRecords. Total counts every
// matching record, ignoring limit and offset.
type RecordPage struct {
	Assets []*domain.Asset
	Events []*domain.AssetEvent
	Issues []*domain.AssetIssue
	Total  int
}

// RecordStore defines the generic list-with-filter primitive over asset records
type RecordStore interface {
	// ListRecords returns the records of kind matching every predicate
	ListRecords(ctx context.Context, kind RecordKind, predicates ...Predicate) (*RecordPage, error)
}

// ListAssets is a typed helper over RecordStore.ListRecords
func ListAssets(ctx context.Context, store RecordStore, predicates ...Predicate) ([]*domain.Asset, error) {
	page, err := store.ListRecords(ctx, RecordKindAssets, predicates...)
	if err != nil {
		return nil, &domain.UpstreamFetchError{Kind: string(RecordKindAssets), Err: err}
	}
	return page.Assets, nil
}

// ListEvents is a typed helper over RecordStore.ListRecords
func ListEvents(ctx context.Context, store RecordStore, predicates ...Predicate) ([]*domain.AssetEvent, error) {
	page, err := store.ListRecords(ctx, RecordKindAssetEvents, predicates...)
	if err != nil {
		return nil, &domain.UpstreamFetchError{Kind: string(RecordKindAssetEvents), Err: err}
	}
	return page.Events, nil
}

// ListIssues is a typed helper over RecordStore.ListRecords
func ListIssues(ctx context.Context, store RecordStore, predicates ...Predicate) ([]*domain.AssetIssue, error) {
	page, err := store.ListRecords(ctx, RecordKindAssetIssues, predicates...)
	if err != nil {
		return nil, &domain.UpstreamFetchError{Kind: string(RecordKindAssetIssues), Err: err}
	}
	return page.Issues, nil
}
