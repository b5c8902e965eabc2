package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Siddarth2230/branchmoji/internal/models"
	"github.com/Siddarth2230/branchmoji/pkg/metrics"
)

var (
	ErrDuplicate       = errors.New("identifier already issued in namespace")
	ErrNotFound        = errors.New("identifier not found")
	ErrOrdinalTooLarge = errors.New("ordinal does not fit the ordinal column")
)

type IdentifierRepository struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

func NewIdentifierRepository(db *sql.DB, dialect Dialect, log *zap.Logger) *IdentifierRepository {
	return &IdentifierRepository{db: db, dialect: dialect, log: log.Named("repository")}
}

// Migrate creates the identifiers table when it does not exist yet.
func (r *IdentifierRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.schema()); err != nil {
		return fmt.Errorf("migrate identifiers: %w", err)
	}
	return nil
}

func (r *IdentifierRepository) Save(ctx context.Context, id *models.Identifier) error {
	defer observe("save", time.Now())

	if id.Ordinal > math.MaxInt64 {
		return fmt.Errorf("%w: %d", ErrOrdinalTooLarge, id.Ordinal)
	}
	query := r.dialect.rebind(`
        INSERT INTO identifiers (namespace, name, ordinal, created_at)
        VALUES (?, ?, ?, ?)
        RETURNING id
    `)
	row := r.db.QueryRowContext(ctx, query, id.Namespace, id.Name, int64(id.Ordinal), id.CreatedAt)
	if err := row.Scan(&id.ID); err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("%w: %s/%s", ErrDuplicate, id.Namespace, id.Name)
		}
		r.log.Error("save identifier", zap.String("namespace", id.Namespace), zap.String("name", id.Name), zap.Error(err))
		return err
	}
	return nil
}

// ListByNamespace returns every identifier in namespace, lowest ordinal first.
func (r *IdentifierRepository) ListByNamespace(ctx context.Context, namespace string) ([]*models.Identifier, error) {
	defer observe("list", time.Now())

	query := r.dialect.rebind(`
        SELECT id, namespace, name, ordinal, created_at
        FROM identifiers
        WHERE namespace = ?
        ORDER BY ordinal, name
    `)
	rows, err := r.db.QueryContext(ctx, query, namespace)
	if err != nil {
		r.log.Error("list identifiers", zap.String("namespace", namespace), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []*models.Identifier
	for rows.Next() {
		id, err := scanIdentifier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListNames returns the bare names issued in namespace.
func (r *IdentifierRepository) ListNames(ctx context.Context, namespace string) ([]string, error) {
	defer observe("list_names", time.Now())

	query := r.dialect.rebind(`SELECT name FROM identifiers WHERE namespace = ?`)
	rows, err := r.db.QueryContext(ctx, query, namespace)
	if err != nil {
		r.log.Error("list names", zap.String("namespace", namespace), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FindByName returns nil, nil when the name was never issued.
func (r *IdentifierRepository) FindByName(ctx context.Context, namespace, name string) (*models.Identifier, error) {
	defer observe("find", time.Now())

	query := r.dialect.rebind(`
        SELECT id, namespace, name, ordinal, created_at
        FROM identifiers
        WHERE namespace = ? AND name = ?
    `)
	id, err := scanIdentifier(r.db.QueryRowContext(ctx, query, namespace, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("find identifier", zap.String("namespace", namespace), zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return id, nil
}

func (r *IdentifierRepository) DeleteByName(ctx context.Context, namespace, name string) error {
	defer observe("delete", time.Now())

	query := r.dialect.rebind(`DELETE FROM identifiers WHERE namespace = ? AND name = ?`)
	result, err := r.db.ExecContext(ctx, query, namespace, name)
	if err != nil {
		r.log.Error("delete identifier", zap.String("namespace", namespace), zap.String("name", name), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, namespace, name)
	}

	r.log.Debug("deleted identifier", zap.String("namespace", namespace), zap.String("name", name))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentifier(s scanner) (*models.Identifier, error) {
	var (
		id      models.Identifier
		ordinal int64
	)
	if err := s.Scan(&id.ID, &id.Namespace, &id.Name, &ordinal, &id.CreatedAt); err != nil {
		return nil, err
	}
	id.Ordinal = uint64(ordinal)
	return &id, nil
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
