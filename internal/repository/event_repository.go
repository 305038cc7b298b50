package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
	pkgkafka "FinSight/pkg/kafka"
)

// ClickHouseStorage archives data points into the market_events table.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

func NewClickHouseStorage(db *sql.DB, table string) drepo.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Store(ctx context.Context, dp *models.DataPoint) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, change_pct) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		dp.Timestamp,
		dp.Symbol,
		dp.Price,
		dp.Volume,
		dp.ChangePct,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, dps []*models.DataPoint) error {
	if len(dps) == 0 {
		return nil
	}
	// multi-row VALUES insert, chunked to bound statement size
	const chunkSize = 2000
	for start := 0; start < len(dps); start += chunkSize {
		end := start + chunkSize
		if end > len(dps) {
			end = len(dps)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, dp := range dps[start:end] {
			if dp == nil || dp.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, dp.Timestamp, dp.Symbol, dp.Price, dp.Volume, dp.ChangePct)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, change_pct) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Query reads back archived points for a symbol in a time range,
// newest first.
func (s *ClickHouseStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.DataPoint, error) {
	q := fmt.Sprintf("SELECT symbol, ts, price, volume, change_pct FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DataPoint
	for rows.Next() {
		var dp models.DataPoint
		if err := rows.Scan(&dp.Symbol, &dp.Timestamp, &dp.Price, &dp.Volume, &dp.ChangePct); err != nil {
			return nil, err
		}
		out = append(out, &dp)
	}
	return out, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // connection owned by pkg/clickhouse
}

// KafkaPublisher fans out points and alerts to their topics, keyed by
// symbol so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer    *pkgkafka.Producer
	eventsTopic string
	alertsTopic string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, eventsTopic, alertsTopic string) drepo.Publisher {
	return &KafkaPublisher{producer: producer, eventsTopic: eventsTopic, alertsTopic: alertsTopic}
}

func (p *KafkaPublisher) PublishPoint(ctx context.Context, dp *models.DataPoint) error {
	return p.producer.Publish(ctx, p.eventsTopic, []byte(dp.Symbol), dp)
}

func (p *KafkaPublisher) PublishAlert(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.alertsTopic, []byte(a.Symbol), a)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
