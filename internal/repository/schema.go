package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS flights (
	id              BIGSERIAL PRIMARY KEY,
	number          VARCHAR(16) NOT NULL,
	departure       VARCHAR(64) NOT NULL,
	destination     VARCHAR(64) NOT NULL,
	total_seats     INTEGER NOT NULL,
	available_seats INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT flights_number_key UNIQUE (number),
	CONSTRAINT flights_total_seats_check CHECK (total_seats > 0),
	CONSTRAINT flights_available_seats_check CHECK (available_seats >= 0 AND available_seats <= total_seats)
);

CREATE TABLE IF NOT EXISTS passengers (
	id              BIGSERIAL PRIMARY KEY,
	first_name      VARCHAR(64) NOT NULL,
	last_name       VARCHAR(64) NOT NULL,
	passport_number VARCHAR(32) NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT passengers_passport_number_key UNIQUE (passport_number)
);

CREATE TABLE IF NOT EXISTS reservations (
	id           BIGSERIAL PRIMARY KEY,
	passenger_id BIGINT NOT NULL,
	flight_id    BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT reservations_passenger_fk FOREIGN KEY (passenger_id) REFERENCES passengers (id),
	CONSTRAINT reservations_flight_fk FOREIGN KEY (flight_id) REFERENCES flights (id)
);

CREATE INDEX IF NOT EXISTS reservations_passenger_id_idx ON reservations (passenger_id);
CREATE INDEX IF NOT EXISTS reservations_flight_id_idx ON reservations (flight_id);
`

// InitializeSchema creates the flights, passengers and reservations tables if missing.
func InitializeSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
