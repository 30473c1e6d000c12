package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the hotel and staff tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", d.Name(), err)
		}
	}
	return nil
}

// The occupancy CHECK on Rooms makes "vacant with a stay" and "occupied
// without one" unrepresentable; UNIQUE(currentStay) keeps a booking in at
// most one room.
func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS Customers (
			CustomerID     INTEGER PRIMARY KEY,
			FirstName      TEXT NOT NULL,
			LastName       TEXT NOT NULL,
			DOB            DATE NOT NULL,
			IdentityType   TEXT NOT NULL CHECK (IdentityType IN ('Adhar', 'PAN', 'DL')),
			IdentityString TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS Pricing (
			PaymentID   INTEGER PRIMARY KEY,
			PaymentType TEXT NOT NULL,
			isDone      BOOLEAN NOT NULL DEFAULT 0,
			price       REAL NOT NULL CHECK (price >= 0),
			discount    REAL NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100)
		)`,
		`CREATE TABLE IF NOT EXISTS Rooms (
			RoomID      INTEGER PRIMARY KEY,
			isVacant    BOOLEAN NOT NULL DEFAULT 1,
			currentStay INTEGER UNIQUE REFERENCES Bookings(BookingsID),
			type        TEXT NOT NULL CHECK (type IN ('2BHK', '3BHK')),
			price       REAL NOT NULL CHECK (price > 0),
			CHECK ((isVacant = 1 AND currentStay IS NULL) OR (isVacant = 0 AND currentStay IS NOT NULL))
		)`,
		`CREATE TABLE IF NOT EXISTS Bookings (
			BookingsID   INTEGER PRIMARY KEY,
			customerID   INTEGER NOT NULL REFERENCES Customers(CustomerID),
			bookedDate   DATE NOT NULL,
			arrivalDate  DATE NOT NULL,
			departureDay DATE NOT NULL,
			paymentID    INTEGER NOT NULL UNIQUE REFERENCES Pricing(PaymentID),
			RoomID       INTEGER REFERENCES Rooms(RoomID),
			CHECK (departureDay >= arrivalDate)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_arrival ON Bookings(arrivalDate)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_departure ON Bookings(departureDay)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer ON Bookings(customerID)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL CHECK (role IN ('MANAGER', 'RECEPTION')),
			is_active     BOOLEAN NOT NULL DEFAULT 1,
			created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			token_hash TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMP NOT NULL,
			revoked_at TIMESTAMP NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

// MySQL cannot declare the Rooms -> Bookings foreign key before Bookings
// exists and ALTER TABLE is not idempotent, so Rooms.currentStay is kept
// consistent by the workflows and UNIQUE only.
func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS Customers (
			CustomerID     BIGINT AUTO_INCREMENT PRIMARY KEY,
			FirstName      VARCHAR(100) NOT NULL,
			LastName       VARCHAR(100) NOT NULL,
			DOB            DATE NOT NULL,
			IdentityType   VARCHAR(8) NOT NULL,
			IdentityString VARCHAR(64) NOT NULL,
			CONSTRAINT chk_customers_identity CHECK (IdentityType IN ('Adhar', 'PAN', 'DL'))
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS Pricing (
			PaymentID   BIGINT AUTO_INCREMENT PRIMARY KEY,
			PaymentType VARCHAR(50) NOT NULL,
			isDone      BOOLEAN NOT NULL DEFAULT FALSE,
			price       DOUBLE NOT NULL,
			discount    DOUBLE NOT NULL DEFAULT 0,
			CONSTRAINT chk_pricing_price CHECK (price >= 0),
			CONSTRAINT chk_pricing_discount CHECK (discount >= 0 AND discount <= 100)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS Rooms (
			RoomID      BIGINT PRIMARY KEY,
			isVacant    BOOLEAN NOT NULL DEFAULT TRUE,
			currentStay BIGINT NULL,
			type        VARCHAR(8) NOT NULL,
			price       DOUBLE NOT NULL,
			UNIQUE KEY uq_rooms_current_stay (currentStay),
			CONSTRAINT chk_rooms_type CHECK (type IN ('2BHK', '3BHK')),
			CONSTRAINT chk_rooms_price CHECK (price > 0),
			CONSTRAINT chk_rooms_occupancy CHECK ((isVacant = 1 AND currentStay IS NULL) OR (isVacant = 0 AND currentStay IS NOT NULL))
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS Bookings (
			BookingsID   BIGINT AUTO_INCREMENT PRIMARY KEY,
			customerID   BIGINT NOT NULL,
			bookedDate   DATE NOT NULL,
			arrivalDate  DATE NOT NULL,
			departureDay DATE NOT NULL,
			paymentID    BIGINT NOT NULL,
			RoomID       BIGINT NULL,
			UNIQUE KEY uq_bookings_payment (paymentID),
			KEY idx_bookings_arrival (arrivalDate),
			KEY idx_bookings_departure (departureDay),
			KEY idx_bookings_customer (customerID),
			CONSTRAINT fk_bookings_customer FOREIGN KEY (customerID) REFERENCES Customers(CustomerID),
			CONSTRAINT fk_bookings_payment FOREIGN KEY (paymentID) REFERENCES Pricing(PaymentID),
			CONSTRAINT fk_bookings_room FOREIGN KEY (RoomID) REFERENCES Rooms(RoomID),
			CONSTRAINT chk_bookings_dates CHECK (departureDay >= arrivalDate)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email         VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role          VARCHAR(16) NOT NULL,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			CONSTRAINT chk_users_role CHECK (role IN ('MANAGER', 'RECEPTION'))
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id    BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
}
