package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

// Store implements engine.Store on a Postgres database.
type Store struct {
	db *sql.DB
}

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Store{db: db}, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListCities returns all monitored cities, coordinates included even when
// null. Callers decide what to do with cities missing coordinates.
func (s *Store) ListCities(ctx context.Context) ([]domain.City, error) {
	query := `
		SELECT id, nome, lat, lon
		FROM cidades
		ORDER BY nome
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}

// GetAlertType retrieves one alert type by ID. Returns (nil, nil) when the
// ID is not registered; that case is the caller's domain.ErrUnknownAlertType,
// not a store failure.
func (s *Store) GetAlertType(ctx context.Context, id string) (*domain.AlertType, error) {
	query := `
		SELECT id, nome, icone, cor_classe
		FROM tipos_alerta
		WHERE id = $1
	`

	var t domain.AlertType
	err := s.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Icon, &t.ColorClass)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert type %q: %w", id, err)
	}

	return &t, nil
}

// InsertAlert persists a candidate, deduplicating on the natural key
// (city, type, date) in a single statement. It reports (id, true, nil) when
// a new row was created and (0, false, nil) when an equivalent alert already
// existed for that day.
func (s *Store) InsertAlert(ctx context.Context, cand domain.CandidateAlert) (int64, bool, error) {
	query := `
		INSERT INTO alertas (cidade_id, tipo_alerta_id, data_alerta, descricao, severidade)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cidade_id, tipo_alerta_id, data_alerta) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		cand.CityID,
		cand.TypeID,
		cand.Date,
		cand.Description,
		cand.Severity,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("insert alert: %w", err)
	}

	return id, true, nil
}

// SubscriberEmails returns the email addresses subscribed to a city's
// alerts, in deterministic order.
func (s *Store) SubscriberEmails(ctx context.Context, cityID string) ([]string, error) {
	query := `
		SELECT u.email
		FROM usuarios u
		JOIN usuario_cidades uc ON uc.usuario_id = u.id
		WHERE uc.cidade_id = $1
		ORDER BY u.email
	`

	rows, err := s.db.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, fmt.Errorf("subscriber emails for city %q: %w", cityID, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}
