package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"valueconverting/internal/valueconverting/models"
	"valueconverting/pkg/platform/sentinel"
)

var sortColumns = map[models.SortProperty]string{
	models.SortByID:                "id",
	models.SortByDisplayName:       "display_name",
	models.SortByFromApplicationID: "from_application_id",
	models.SortByFromTypeID:        "from_type_id",
	models.SortByToApplicationID:   "to_application_id",
	models.SortByToTypeID:          "to_type_id",
}

const selectColumns = `id, display_name, from_application_id, from_type_id, to_application_id, to_type_id`

// PostgresStore persists records in the value_converting and converting_map
// tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts the record and its converting map in one transaction.
func (s *PostgresStore) Save(ctx context.Context, vc *models.ValueConverting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin save value converting", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO value_converting (display_name, from_application_id, from_type_id, to_application_id, to_type_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		vc.DisplayName, vc.FromApplicationID, vc.FromTypeID, vc.ToApplicationID, vc.ToTypeID,
	).Scan(&id)
	if err != nil {
		return storeError("insert value converting", err)
	}

	for key, value := range vc.ConvertingMap {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO converting_map (value_converting_id, key, value) VALUES ($1, $2, $3)`,
			id, key, value,
		); err != nil {
			return storeError("insert converting map entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError("commit save value converting", err)
	}
	vc.ID = id
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.ValueConverting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM value_converting WHERE id = $1`, id)
	vc, err := scanValueConverting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, storeError("find value converting by id", err)
	}

	maps, err := s.loadConvertingMaps(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	vc.ConvertingMap = maps[id]
	return &vc, nil
}

func (s *PostgresStore) List(ctx context.Context, q models.ListQuery) (models.Page[models.ValueConverting], error) {
	column, ok := sortColumns[q.Page.Property]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if q.Page.Direction == models.Desc {
		direction = "DESC"
	}

	where := ""
	args := []any{}
	if q.Filtered() {
		where = ` WHERE from_application_id = ANY($1)`
		args = append(args, pq.Array(q.Owners))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM value_converting`+where, args...).Scan(&total); err != nil {
		return models.Page[models.ValueConverting]{}, storeError("count value convertings", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM value_converting%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		selectColumns, where, column, direction, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, q.Page.Size, q.Page.Offset())...)
	if err != nil {
		return models.Page[models.ValueConverting]{}, storeError("list value convertings", err)
	}
	defer rows.Close()

	var content []models.ValueConverting
	for rows.Next() {
		vc, err := scanValueConverting(rows)
		if err != nil {
			return models.Page[models.ValueConverting]{}, storeError("scan value converting", err)
		}
		content = append(content, vc)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.ValueConverting]{}, storeError("iterate value convertings", err)
	}

	if !q.SkipConvertingMaps && len(content) > 0 {
		ids := make([]int64, len(content))
		for i, vc := range content {
			ids[i] = vc.ID
		}
		maps, err := s.loadConvertingMaps(ctx, ids)
		if err != nil {
			return models.Page[models.ValueConverting]{}, err
		}
		for i := range content {
			content[i].ConvertingMap = maps[content[i].ID]
		}
	}
	return models.NewPage(content, total, q.Page), nil
}

// loadConvertingMaps returns one non-nil map per requested id.
func (s *PostgresStore) loadConvertingMaps(ctx context.Context, ids []int64) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(ids))
	for _, id := range ids {
		out[id] = map[string]string{}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT value_converting_id, key, value FROM converting_map WHERE value_converting_id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, storeError("load converting maps", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         int64
			key, value string
		)
		if err := rows.Scan(&id, &key, &value); err != nil {
			return nil, storeError("scan converting map entry", err)
		}
		out[id][key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate converting maps", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanValueConverting(row rowScanner) (models.ValueConverting, error) {
	var vc models.ValueConverting
	err := row.Scan(&vc.ID, &vc.DisplayName, &vc.FromApplicationID, &vc.FromTypeID, &vc.ToApplicationID, &vc.ToTypeID)
	return vc, err
}

// storeError annotates err with op. Connection-level failures additionally
// match sentinel.ErrUnavailable.
func storeError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
