package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/tr"
)

// SyncRunRepo хранит записи проходов синхронизации. Одновременно не более
// одного running-прохода на магазин: гарантируется частичным уникальным
// индексом по shop_tld WHERE status = 'running'.
type SyncRunRepo struct {
	pool *pgxpool.Pool
}

func NewSyncRunRepo(pool *pgxpool.Pool) *SyncRunRepo {
	return &SyncRunRepo{pool: pool}
}

// Start открывает проход в статусе running. Если для магазина уже есть
// незакрытый проход, возвращает ErrSyncAlreadyRunning; force сперва
// закрывает зависший running-проход как ошибочный.
func (s *SyncRunRepo) Start(ctx context.Context, shopTLD string, force bool) (*domain.SyncRun, error) {
	if force {
		clearStale := `
			UPDATE sync_runs
			SET status = 'error', completed_at = NOW(), error_message = 'forcibly cleared'
			WHERE shop_tld = $1 AND status = 'running';
		`
		if _, err := s.pool.Exec(ctx, clearStale, shopTLD); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	query := `
		INSERT INTO sync_runs (shop_tld, status, started_at)
		VALUES ($1, 'running', NOW())
		RETURNING id, started_at;
	`

	run := &domain.SyncRun{ShopTLD: shopTLD, Status: domain.RunRunning}
	err := s.pool.QueryRow(ctx, query, shopTLD).Scan(&run.ID, &run.StartedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSyncAlreadyRunning)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return run, nil
}

// Seal закрывает проход ровно один раз: только running-строка может быть
// закрыта. Выполняется внутри транзакции из контекста.
func (s *SyncRunRepo) Seal(ctx context.Context, runID int64, status domain.RunStatus, errMsg string, m domain.SyncMetrics) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE sync_runs
		SET status = $2,
		    completed_at = NOW(),
		    error_message = NULLIF($3, ''),
		    products_fetched = $4,
		    variants_fetched = $5,
		    products_synced = $6,
		    variants_synced = $7,
		    products_deleted = $8,
		    variants_deleted = $9,
		    variants_filtered = $10
		WHERE id = $1 AND status = 'running';
	`

	tag, err := tx.Exec(ctx, query, runID, status, errMsg,
		m.ProductsFetched, m.VariantsFetched,
		m.ProductsSynced, m.VariantsSynced,
		m.ProductsDeleted, m.VariantsDeleted,
		m.VariantsFiltered,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrSyncRunNotFound)
	}

	return nil
}

// Last возвращает последний по времени старта проход каждого магазина.
func (s *SyncRunRepo) Last(ctx context.Context) ([]domain.SyncRun, error) {
	query := `
		SELECT DISTINCT ON (shop_tld)
		       id, shop_tld, status, started_at, completed_at,
		       COALESCE(error_message, ''),
		       products_fetched, variants_fetched,
		       products_synced, variants_synced,
		       products_deleted, variants_deleted,
		       variants_filtered
		FROM sync_runs
		ORDER BY shop_tld, started_at DESC;
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	runs := make([]domain.SyncRun, 0)
	for rows.Next() {
		var run domain.SyncRun
		err := rows.Scan(
			&run.ID, &run.ShopTLD, &run.Status, &run.StartedAt, &run.CompletedAt,
			&run.ErrorMessage,
			&run.Metrics.ProductsFetched, &run.Metrics.VariantsFetched,
			&run.Metrics.ProductsSynced, &run.Metrics.VariantsSynced,
			&run.Metrics.ProductsDeleted, &run.Metrics.VariantsDeleted,
			&run.Metrics.VariantsFiltered,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return runs, nil
}

// postgresDuplicate распознаёт нарушение уникальности (код 23505).
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
