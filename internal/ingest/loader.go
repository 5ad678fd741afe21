package ingest

import (
	"context"

	"email-report-pipeline/internal/logger"
	"email-report-pipeline/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const stagingTable = "staging.client_report_rows"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Execer is the single-statement surface the loader needs. *pgxpool.Pool
// satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Loader writes one multi-row INSERT per document. All rows of a batch must
// share the ParsedRow field set; that is a precondition, not checked here.
type Loader struct {
	db  Execer
	log zerolog.Logger
}

func NewLoader(db Execer) *Loader {
	return &Loader{
		db:  db,
		log: logger.Get(),
	}
}

// InsertBatch executes the whole batch as a single round-trip and returns the
// inserted row count. An empty batch is a no-op returning 0.
func (l *Loader) InsertBatch(ctx context.Context, rows []*model.ParsedRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	builder := psql.Insert(stagingTable).Columns(model.ParsedRowColumns...)
	for _, row := range rows {
		builder = builder.Values(row.Values()...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := l.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	l.log.Debug().Int64("rows", tag.RowsAffected()).Msg("Batch inserted")
	return tag.RowsAffected(), nil
}
