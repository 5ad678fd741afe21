package db

import (
	"context"
	"errors"

	"email-report-pipeline/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	reportStatusTable = "core.report_status_log"
	rawDocumentsTable = "staging.client_reports_raw"
	ingestionLogTable = "core.ingestion_log"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository interface {
	UpsertReportEvent(ctx context.Context, clientID, status string, link *string) error
	ListReportEvents(ctx context.Context, clientID string) ([]model.ReportEvent, error)
	InsertRawDocument(ctx context.Context, clientID, rawText string) (int64, error)
	ListPendingDocuments(ctx context.Context) ([]model.RawDocument, error)
	MarkDocumentProcessed(ctx context.Context, documentID int64) error
	OpenIngestionLog(ctx context.Context, clientID string) (int64, error)
	CloseIngestionLog(ctx context.Context, logID int64, status string, rowCount *int) error
	RecordIngestionFailure(ctx context.Context, clientID, status string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// eventKey resolves the status-log upsert key: a link identifies its own row;
// without one, the client's single link-less row is the target.
func eventKey(clientID string, link *string) sq.Eq {
	if link != nil {
		return sq.Eq{"report_link": *link}
	}
	return sq.Eq{"client_id": clientID, "report_link": nil}
}

// UpsertReportEvent updates the most recent status row for the key in place,
// or inserts one if none exists. The key is the link when present, otherwise
// the client id over link-less rows. History therefore collapses to one
// current row per key.
func (r *repository) UpsertReportEvent(ctx context.Context, clientID, status string, link *string) error {
	query, args, err := psql.Select("id").
		From(reportStatusTable).
		Where(eventKey(clientID, link)).
		OrderBy("event_time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return err
	}

	var id int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		query, args, err = psql.Insert(reportStatusTable).
			Columns("client_id", "status", "report_link", "event_time").
			Values(clientID, status, link, sq.Expr("NOW()")).
			ToSql()
		if err != nil {
			return err
		}
		_, err = r.pool.Exec(ctx, query, args...)
		return err
	case err != nil:
		return err
	}

	query, args, err = psql.Update(reportStatusTable).
		Set("status", status).
		Set("event_time", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *repository) ListReportEvents(ctx context.Context, clientID string) ([]model.ReportEvent, error) {
	query, args, err := psql.Select("id", "client_id", "status", "report_link", "event_time").
		From(reportStatusTable).
		Where(sq.Eq{"client_id": clientID}).
		OrderBy("event_time DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ReportEvent
	for rows.Next() {
		var ev model.ReportEvent
		if err := rows.Scan(&ev.ID, &ev.ClientID, &ev.Status, &ev.ReportLink, &ev.EventTime); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (r *repository) InsertRawDocument(ctx context.Context, clientID, rawText string) (int64, error) {
	query, args, err := psql.Insert(rawDocumentsTable).
		Columns("client_id", "raw_text", "processed").
		Values(clientID, rawText, false).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) ListPendingDocuments(ctx context.Context) ([]model.RawDocument, error) {
	query, args, err := psql.Select("id", "raw_text", "client_id").
		From(rawDocumentsTable).
		Where(sq.Eq{"processed": false}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.RawDocument
	for rows.Next() {
		var doc model.RawDocument
		if err := rows.Scan(&doc.ID, &doc.RawText, &doc.ClientID); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (r *repository) MarkDocumentProcessed(ctx context.Context, documentID int64) error {
	query, args, err := psql.Update(rawDocumentsTable).
		Set("processed", true).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

func (r *repository) OpenIngestionLog(ctx context.Context, clientID string) (int64, error) {
	query, args, err := psql.Insert(ingestionLogTable).
		Columns("client_id", "status", "row_count", "event_time").
		Values(clientID, string(model.IngestionStatusStarted), nil, sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) CloseIngestionLog(ctx context.Context, logID int64, status string, rowCount *int) error {
	builder := psql.Update(ingestionLogTable).
		Set("status", status).
		Set("event_time", sq.Expr("NOW()")).
		Where(sq.Eq{"id": logID})
	if rowCount != nil {
		builder = builder.Set("row_count", *rowCount)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

// RecordIngestionFailure is the fallback for documents that fail before a log
// row could be opened.
func (r *repository) RecordIngestionFailure(ctx context.Context, clientID, status string) error {
	query, args, err := psql.Insert(ingestionLogTable).
		Columns("client_id", "status", "event_time").
		Values(clientID, status, sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
