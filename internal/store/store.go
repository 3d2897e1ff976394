// Package store is the relational record store behind the document service:
// owners, properties, tenants, leases, inventories, rents and the metadata
// rows recorded for generated files. It is an embedded SQLite database; the
// document core only ever asks it for one fully joined record per request.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("record not found")

const dateLayout = "2006-01-02"

// Store wraps the SQL handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name   TEXT NOT NULL DEFAULT '',
	last_name    TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	postal_code  TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS properties (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id    INTEGER NOT NULL REFERENCES owners(id),
	address     TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL DEFAULT 'appartement',
	surface     REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS tenants (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS leases (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	property_id INTEGER NOT NULL REFERENCES properties(id),
	tenant_id   INTEGER NOT NULL REFERENCES tenants(id),
	kind        TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT,
	rent_amount REAL NOT NULL DEFAULT 0,
	charges     REAL NOT NULL DEFAULT 0,
	deposit     REAL NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'brouillon'
);
CREATE TABLE IF NOT EXISTS inventories (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	lease_id INTEGER NOT NULL REFERENCES leases(id),
	kind     TEXT NOT NULL DEFAULT 'entree',
	date     TEXT NOT NULL DEFAULT '',
	notes    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS inventory_rooms (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	inventory_id INTEGER NOT NULL REFERENCES inventories(id),
	name         TEXT NOT NULL DEFAULT '',
	condition    TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS rents (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	lease_id INTEGER NOT NULL REFERENCES leases(id),
	month    INTEGER NOT NULL DEFAULT 0,
	year     INTEGER NOT NULL DEFAULT 0,
	amount   REAL NOT NULL DEFAULT 0,
	charges  REAL NOT NULL DEFAULT 0,
	status   TEXT NOT NULL DEFAULT 'en_attente',
	paid_at  TEXT
);
CREATE TABLE IF NOT EXISTS documents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_kind TEXT NOT NULL DEFAULT '',
	owner_id   INTEGER NOT NULL DEFAULT 0,
	kind       TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	mime_type  TEXT NOT NULL DEFAULT '',
	size       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT ''
);
`

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// GetLease fetches a lease with its property, tenant and owner in one query.
func (s *Store) GetLease(ctx context.Context, id int64) (*LeaseRecord, error) {
	const q = `
SELECT l.id, l.property_id, l.tenant_id, l.kind, l.start_date, l.end_date,
       l.rent_amount, l.charges, l.deposit, l.status,
       p.id, p.owner_id, p.address, p.city, p.postal_code, p.kind, p.surface,
       t.id, t.first_name, t.last_name, t.email, t.phone,
       o.id, o.first_name, o.last_name, o.company_name, o.address, o.city, o.postal_code, o.email
FROM leases l
JOIN properties p ON p.id = l.property_id
JOIN tenants t    ON t.id = l.tenant_id
JOIN owners o     ON o.id = p.owner_id
WHERE l.id = ?`

	var rec LeaseRecord
	var startDate string
	var endDate sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.Lease.ID, &rec.Lease.PropertyID, &rec.Lease.TenantID, &rec.Lease.Kind,
		&startDate, &endDate,
		&rec.Lease.RentAmount, &rec.Lease.Charges, &rec.Lease.Deposit, &rec.Lease.Status,
		&rec.Property.ID, &rec.Property.OwnerID, &rec.Property.Address, &rec.Property.City,
		&rec.Property.PostalCode, &rec.Property.Kind, &rec.Property.Surface,
		&rec.Tenant.ID, &rec.Tenant.FirstName, &rec.Tenant.LastName, &rec.Tenant.Email, &rec.Tenant.Phone,
		&rec.Owner.ID, &rec.Owner.FirstName, &rec.Owner.LastName, &rec.Owner.CompanyName,
		&rec.Owner.Address, &rec.Owner.City, &rec.Owner.PostalCode, &rec.Owner.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch lease %d: %w", id, err)
	}
	rec.Lease.StartDate = parseDate(startDate)
	rec.Lease.EndDate = parseNullDate(endDate)
	return &rec, nil
}

// GetInventory fetches an inventory, its rooms and the lease joins.
func (s *Store) GetInventory(ctx context.Context, id int64) (*InventoryRecord, error) {
	const q = `
SELECT i.id, i.lease_id, i.kind, i.date, i.notes,
       l.id, l.property_id, l.tenant_id, l.kind, l.start_date, l.rent_amount, l.charges, l.deposit, l.status,
       p.id, p.owner_id, p.address, p.city, p.postal_code, p.kind, p.surface,
       t.id, t.first_name, t.last_name, t.email, t.phone
FROM inventories i
JOIN leases l     ON l.id = i.lease_id
JOIN properties p ON p.id = l.property_id
JOIN tenants t    ON t.id = l.tenant_id
WHERE i.id = ?`

	var rec InventoryRecord
	var invDate, startDate string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.Inventory.ID, &rec.Inventory.LeaseID, &rec.Inventory.Kind, &invDate, &rec.Inventory.Notes,
		&rec.Lease.ID, &rec.Lease.PropertyID, &rec.Lease.TenantID, &rec.Lease.Kind, &startDate,
		&rec.Lease.RentAmount, &rec.Lease.Charges, &rec.Lease.Deposit, &rec.Lease.Status,
		&rec.Property.ID, &rec.Property.OwnerID, &rec.Property.Address, &rec.Property.City,
		&rec.Property.PostalCode, &rec.Property.Kind, &rec.Property.Surface,
		&rec.Tenant.ID, &rec.Tenant.FirstName, &rec.Tenant.LastName, &rec.Tenant.Email, &rec.Tenant.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch inventory %d: %w", id, err)
	}
	rec.Inventory.Date = parseDate(invDate)
	rec.Lease.StartDate = parseDate(startDate)

	rooms, err := s.db.QueryContext(ctx,
		`SELECT id, inventory_id, name, condition, notes FROM inventory_rooms WHERE inventory_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms for inventory %d: %w", id, err)
	}
	defer rooms.Close()
	for rooms.Next() {
		var r Room
		if err := rooms.Scan(&r.ID, &r.InventoryID, &r.Name, &r.Condition, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rec.Rooms = append(rec.Rooms, r)
	}
	if err := rooms.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return &rec, nil
}

// GetRent fetches a rent call with its lease, property, tenant and owner.
func (s *Store) GetRent(ctx context.Context, id int64) (*RentRecord, error) {
	const q = `
SELECT r.id, r.lease_id, r.month, r.year, r.amount, r.charges, r.status, r.paid_at,
       l.id, l.property_id, l.tenant_id, l.kind, l.start_date, l.rent_amount, l.charges, l.deposit, l.status,
       p.id, p.owner_id, p.address, p.city, p.postal_code, p.kind, p.surface,
       t.id, t.first_name, t.last_name, t.email, t.phone,
       o.id, o.first_name, o.last_name, o.company_name, o.address, o.city, o.postal_code, o.email
FROM rents r
JOIN leases l     ON l.id = r.lease_id
JOIN properties p ON p.id = l.property_id
JOIN tenants t    ON t.id = l.tenant_id
JOIN owners o     ON o.id = p.owner_id
WHERE r.id = ?`

	var rec RentRecord
	var startDate string
	var paidAt sql.NullString
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&rec.Rent.ID, &rec.Rent.LeaseID, &rec.Rent.Month, &rec.Rent.Year,
		&rec.Rent.Amount, &rec.Rent.Charges, &rec.Rent.Status, &paidAt,
		&rec.Lease.ID, &rec.Lease.PropertyID, &rec.Lease.TenantID, &rec.Lease.Kind, &startDate,
		&rec.Lease.RentAmount, &rec.Lease.Charges, &rec.Lease.Deposit, &rec.Lease.Status,
		&rec.Property.ID, &rec.Property.OwnerID, &rec.Property.Address, &rec.Property.City,
		&rec.Property.PostalCode, &rec.Property.Kind, &rec.Property.Surface,
		&rec.Tenant.ID, &rec.Tenant.FirstName, &rec.Tenant.LastName, &rec.Tenant.Email, &rec.Tenant.Phone,
		&rec.Owner.ID, &rec.Owner.FirstName, &rec.Owner.LastName, &rec.Owner.CompanyName,
		&rec.Owner.Address, &rec.Owner.City, &rec.Owner.PostalCode, &rec.Owner.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch rent %d: %w", id, err)
	}
	rec.Lease.StartDate = parseDate(startDate)
	rec.Rent.PaidAt = parseNullDate(paidAt)
	return &rec, nil
}

// InsertDocument records metadata for a persisted generated file.
func (s *Store) InsertDocument(ctx context.Context, d *Document) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (owner_kind, owner_id, kind, name, path, mime_type, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.OwnerKind, d.OwnerID, d.Kind, d.Name, d.Path, d.MimeType, d.Size,
		d.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

// Insert helpers used by seeding and tests.

func (s *Store) InsertOwner(ctx context.Context, o *Owner) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO owners (first_name, last_name, company_name, address, city, postal_code, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.FirstName, o.LastName, o.CompanyName, o.Address, o.City, o.PostalCode, o.Email)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	o.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertProperty(ctx context.Context, p *Property) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (owner_id, address, city, postal_code, kind, surface)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Address, p.City, p.PostalCode, p.Kind, p.Surface)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertTenant(ctx context.Context, t *Tenant) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (first_name, last_name, email, phone) VALUES (?, ?, ?, ?)`,
		t.FirstName, t.LastName, t.Email, t.Phone)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertLease(ctx context.Context, l *Lease) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leases (property_id, tenant_id, kind, start_date, end_date, rent_amount, charges, deposit, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.PropertyID, l.TenantID, l.Kind, formatDate(l.StartDate), formatNullDate(l.EndDate),
		l.RentAmount, l.Charges, l.Deposit, l.Status)
	if err != nil {
		return fmt.Errorf("insert lease: %w", err)
	}
	l.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertInventory(ctx context.Context, inv *Inventory) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inventories (lease_id, kind, date, notes) VALUES (?, ?, ?, ?)`,
		inv.LeaseID, inv.Kind, formatDate(inv.Date), inv.Notes)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	inv.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertRoom(ctx context.Context, r *Room) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_rooms (inventory_id, name, condition, notes) VALUES (?, ?, ?, ?)`,
		r.InventoryID, r.Name, r.Condition, r.Notes)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

func (s *Store) InsertRent(ctx context.Context, r *Rent) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rents (lease_id, month, year, amount, charges, status, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.LeaseID, r.Month, r.Year, r.Amount, r.Charges, r.Status, formatNullDate(r.PaidAt))
	if err != nil {
		return fmt.Errorf("insert rent: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseDate(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatNullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
