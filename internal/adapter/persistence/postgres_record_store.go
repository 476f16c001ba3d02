package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fixora/assetdash/internal/domain"
	"github.com/fixora/assetdash/internal/ports"
)

// DefaultMaxRows bounds a single ListRecords call when no smaller limit is given
const DefaultMaxRows = 10000

type tableSpec struct {
	name    string
	columns string
	// fields maps record field names to SQL columns
	fields map[string]string
}

var tables = map[ports.RecordKind]tableSpec{
	ports.RecordKindAssets: {
		name: "assets",
		columns: "id, name, category, department, purchase_price, purchase_date, " +
			"available_status, current_condition, last_used_at, created_at",
		fields: map[string]string{
			"$id":              "id",
			"name":             "name",
			"category":         "category",
			"department":       "department",
			"purchasePrice":    "purchase_price",
			"purchaseDate":     "purchase_date",
			"availableStatus":  "available_status",
			"currentCondition": "current_condition",
			"lastUsedAt":       "last_used_at",
			"$createdAt":       "created_at",
		},
	},
	ports.RecordKindAssetEvents: {
		name:    "asset_events",
		columns: "id, asset_id, event_type, from_value, to_value, at",
		fields: map[string]string{
			"$id":       "id",
			"assetId":   "asset_id",
			"eventType": "event_type",
			"fromValue": "from_value",
			"toValue":   "to_value",
			"at":        "at",
		},
	},
	ports.RecordKindAssetIssues: {
		name:    "asset_issues",
		columns: "id, asset_id, issue_type, reported_at, resolved_at",
		fields: map[string]string{
			"$id":        "id",
			"assetId":    "asset_id",
			"issueType":  "issue_type",
			"reportedAt": "reported_at",
			"resolvedAt": "resolved_at",
		},
	},
}

// PostgresRecordStore implements RecordStore using PostgreSQL
type PostgresRecordStore struct {
	db      *sql.DB
	maxRows int
}

// NewPostgresRecordStore creates a new PostgreSQL record store. maxRows caps
// every page; values below one fall back to DefaultMaxRows.
func NewPostgresRecordStore(db *sql.DB, maxRows int) *PostgresRecordStore {
	if maxRows < 1 {
		maxRows = DefaultMaxRows
	}
	return &PostgresRecordStore{db: db, maxRows: maxRows}
}

// selectQuery is a translated predicate list
type selectQuery struct {
	where   string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

func (r *PostgresRecordStore) build(spec tableSpec, predicates []ports.Predicate) (*selectQuery, error) {
	q := &selectQuery{limit: r.maxRows}
	var conditions []string
	var orders []string

	column := func(field string) (string, error) {
		col, ok := spec.fields[field]
		if !ok {
			return "", fmt.Errorf("unsupported field %q for %s", field, spec.name)
		}
		return col, nil
	}
	bind := func(v interface{}) string {
		q.args = append(q.args, v)
		return fmt.Sprintf("$%d", len(q.args))
	}

	for _, p := range predicates {
		switch p.Op {
		case ports.OpLimit:
			if n, ok := p.Value.(int); ok && n > 0 && n < q.limit {
				q.limit = n
			}
			continue
		case ports.OpOffset:
			if n, ok := p.Value.(int); ok && n > 0 {
				q.offset = n
			}
			continue
		}

		col, err := column(p.Field)
		if err != nil {
			return nil, err
		}

		switch p.Op {
		case ports.OpEqual:
			conditions = append(conditions, fmt.Sprintf("%s = %s", col, bind(p.Value)))
		case ports.OpGreaterEq:
			conditions = append(conditions, fmt.Sprintf("%s >= %s", col, bind(p.Value)))
		case ports.OpLessEq:
			conditions = append(conditions, fmt.Sprintf("%s <= %s", col, bind(p.Value)))
		case ports.OpIn:
			values, ok := p.Value.([]string)
			if !ok {
				return nil, fmt.Errorf("in predicate on %s requires a string list", p.Field)
			}
			conditions = append(conditions, fmt.Sprintf("%s = ANY(%s)", col, bind(pq.Array(values))))
		case ports.OpSearch:
			text, _ := p.Value.(string)
			conditions = append(conditions, fmt.Sprintf("%s ILIKE %s", col, bind("%"+text+"%")))
		case ports.OpOrderAsc:
			orders = append(orders, col+" ASC")
		case ports.OpOrderDesc:
			orders = append(orders, col+" DESC")
		default:
			return nil, fmt.Errorf("unsupported operator %q", p.Op)
		}
	}

	if len(conditions) > 0 {
		q.where = " WHERE " + strings.Join(conditions, " AND ")
	}
	if len(orders) > 0 {
		q.orderBy = " ORDER BY " + strings.Join(orders, ", ")
	}
	return q, nil
}

// ListRecords returns the records of kind matching every predicate
func (r *PostgresRecordStore) ListRecords(ctx context.Context, kind ports.RecordKind, predicates ...ports.Predicate) (*ports.RecordPage, error) {
	spec, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	q, err := r.build(spec, predicates)
	if err != nil {
		return nil, err
	}

	page := &ports.RecordPage{}
	countQuery := "SELECT COUNT(*) FROM " + spec.name + q.where
	if err := r.db.QueryRowContext(ctx, countQuery, q.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", spec.name, err)
	}

	args := append(q.args[:len(q.args):len(q.args)], q.limit)
	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d", spec.columns, spec.name, q.where, q.orderBy, len(args))
	if q.offset > 0 {
		args = append(args, q.offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", spec.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		switch kind {
		case ports.RecordKindAssets:
			a, err := scanAsset(rows)
			if err != nil {
				return nil, err
			}
			page.Assets = append(page.Assets, a)
		case ports.RecordKindAssetEvents:
			e, err := scanEvent(rows)
			if err != nil {
				return nil, err
			}
			page.Events = append(page.Events, e)
		case ports.RecordKindAssetIssues:
			i, err := scanIssue(rows)
			if err != nil {
				return nil, err
			}
			page.Issues = append(page.Issues, i)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", spec.name, err)
	}

	return page, nil
}

func scanAsset(rows *sql.Rows) (*domain.Asset, error) {
	var a domain.Asset
	var purchaseDate, lastUsedAt sql.NullTime

	err := rows.Scan(
		&a.ID,
		&a.Name,
		&a.Category,
		&a.Department,
		&a.PurchasePrice,
		&purchaseDate,
		&a.AvailableStatus,
		&a.CurrentCondition,
		&lastUsedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	if purchaseDate.Valid {
		t := purchaseDate.Time.UTC()
		a.PurchaseDate = &t
	}
	if lastUsedAt.Valid {
		t := lastUsedAt.Time.UTC()
		a.LastUsedAt = &t
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func scanEvent(rows *sql.Rows) (*domain.AssetEvent, error) {
	var e domain.AssetEvent
	var fromValue, toValue sql.NullString

	if err := rows.Scan(&e.ID, &e.AssetID, &e.EventType, &fromValue, &toValue, &e.At); err != nil {
		return nil, fmt.Errorf("failed to scan asset event: %w", err)
	}

	e.FromValue = fromValue.String
	e.ToValue = toValue.String
	e.At = e.At.UTC()
	return &e, nil
}

func scanIssue(rows *sql.Rows) (*domain.AssetIssue, error) {
	var i domain.AssetIssue
	var resolvedAt sql.NullTime

	if err := rows.Scan(&i.ID, &i.AssetID, &i.IssueType, &i.ReportedAt, &resolvedAt); err != nil {
		return nil, fmt.Errorf("failed to scan asset issue: %w", err)
	}

	i.ReportedAt = i.ReportedAt.UTC()
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		i.ResolvedAt = &t
	}
	return &i, nil
}
