package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"videoagent-pipeline/internal/pipeline"
	"videoagent-pipeline/pkg/logger"
)

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	// tune pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	logger.Get().Infow("mysql storage initialized", "dsn", dsn)
	return &MySQLStorage{db: db}, nil
}

func (s *MySQLStorage) DB() *sql.DB {
	return s.db
}

func (s *MySQLStorage) Close() error {
	return s.db.Close()
}

func (s *MySQLStorage) Store(ctx context.Context, events []pipeline.StoredEvent) error {
	log := logger.Get().With("component", "mysql_storage")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Errorw("begin transaction failed", "error", err)
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO normalized_events
		(delivery_id, call_id, agent_id, event_type, payload, received_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		log.Errorw("prepare statement failed", "error", err)
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err = stmt.ExecContext(ctx,
			e.DeliveryID,
			e.CallID,
			e.AgentID,
			e.EventType,
			string(e.Payload),
			e.ReceivedAt,
			e.ProcessedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			log.Errorw("insert failed",
				"delivery_id", e.DeliveryID,
				"call_id", e.CallID,
				"event_type", e.EventType,
				"error", err,
			)
			return fmt.Errorf("insert failed: %w", err)
		}

		log.Debugw("event stored",
			"delivery_id", e.DeliveryID,
			"call_id", e.CallID,
			"agent_id", e.AgentID,
			"event_type", e.EventType,
		)
	}

	if err := tx.Commit(); err != nil {
		log.Errorw("transaction commit failed", "error", err)
		return err
	}

	log.Infow("batch stored successfully", "count", len(events))
	return nil
}
