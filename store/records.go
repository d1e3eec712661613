package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/robertof/go-btinfo/device"
	"github.com/robertof/go-btinfo/utils"
)

const (
	colAddress          = "address"
	colName             = "name"
	colCompanyName      = "company_name"
	colType             = "type"
	colLMPVersion       = "lmp_version"
	colLMPSubVersion    = "lmp_sub_version"
	colManufacturerName = "manufacture_name"
	colCreatedAt        = "created_at"
	colUpdatedAt        = "updated_at"
)

// EnsureSchema creates the record table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		address TEXT PRIMARY KEY NOT NULL,
		name TEXT,
		company_name TEXT,
		type TEXT,
		lmp_version INT,
		lmp_sub_version INT,
		manufacture_name TEXT,
		created_at TEXT NOT NULL DEFAULT current_timestamp,
		updated_at TEXT NOT NULL DEFAULT current_timestamp
	)`, s.table))

	if err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}

	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int

	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}

	return n, nil
}

func (s *Store) LoadAll(ctx context.Context) ([]device.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY created_at, address",
		strings.Join([]string{
			colAddress, colName, colCompanyName, colType, colLMPVersion,
			colLMPSubVersion, colManufacturerName, colCreatedAt, colUpdatedAt,
		}, ", "),
		s.table,
	))
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	defer rows.Close()

	var records []device.Record

	for rows.Next() {
		var (
			rec                              device.Record
			name, company, typ, manufacturer sql.NullString
			lmpVersion, lmpSubVersion        sql.NullInt64
			createdAt, updatedAt             string
		)

		if err := rows.Scan(
			&rec.Address, &name, &company, &typ, &lmpVersion,
			&lmpSubVersion, &manufacturer, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec.Name = stringField(name)
		rec.CompanyName = stringField(company)
		rec.DeviceType = stringField(typ)
		rec.ManufacturerName = stringField(manufacturer)

		if lmpVersion.Valid {
			rec.LMPVersion = device.Some(uint8(lmpVersion.Int64))
		}

		if lmpSubVersion.Valid {
			rec.LMPSubVersion = device.Some(uint16(lmpSubVersion.Int64))
		}

		rec.CreatedAt = parseTimestamp(createdAt)
		rec.UpdatedAt = parseTimestamp(updatedAt)

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	return records, nil
}

// Insert adds a new record. Both timestamps are set to the current time and
// written back to rec.
func (s *Store) Insert(ctx context.Context, rec *device.Record) error {
	ts := s.timestamp()

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.table,
		colAddress, colName, colCompanyName, colType, colLMPVersion,
		colLMPSubVersion, colManufacturerName, colCreatedAt, colUpdatedAt,
	),
		rec.Address,
		value(rec.Name),
		value(rec.CompanyName),
		value(rec.DeviceType),
		value(rec.LMPVersion),
		value(rec.LMPSubVersion),
		value(rec.ManufacturerName),
		ts,
		ts,
	)

	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.Address, err)
	}

	rec.CreatedAt = parseTimestamp(ts)
	rec.UpdatedAt = rec.CreatedAt

	return nil
}

// UpdatePartial writes the set fields of d to the record of addr and bumps
// its updated_at. It returns the new updated_at.
func (s *Store) UpdatePartial(ctx context.Context, addr string, d device.Delta) (time.Time, error) {
	cols := deltaColumns(d)
	if len(cols) == 0 {
		return time.Time{}, nil
	}

	ts := s.timestamp()

	names := utils.SortedKeys(cols)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+2)

	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, cols[name])
	}

	sets = append(sets, colUpdatedAt+" = ?")
	args = append(args, ts, addr)

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = ?",
		s.table, strings.Join(sets, ", "), colAddress,
	), args...)

	if err != nil {
		return time.Time{}, fmt.Errorf("updating record %s: %w", addr, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return time.Time{}, fmt.Errorf("updating record %s: %w", addr, ErrNotFound)
	}

	return parseTimestamp(ts), nil
}

func deltaColumns(d device.Delta) map[string]any {
	cols := make(map[string]any)

	if d.Name.Set {
		cols[colName] = d.Name.Value
	}
	if d.CompanyName.Set {
		cols[colCompanyName] = d.CompanyName.Value
	}
	if d.DeviceType.Set {
		cols[colType] = d.DeviceType.Value
	}
	if d.LMPVersion.Set {
		cols[colLMPVersion] = int64(d.LMPVersion.Value)
	}
	if d.LMPSubVersion.Set {
		cols[colLMPSubVersion] = int64(d.LMPSubVersion.Value)
	}
	if d.ManufacturerName.Set {
		cols[colManufacturerName] = d.ManufacturerName.Value
	}

	return cols
}

func value[T comparable](f device.Field[T]) any {
	if !f.Set {
		return nil
	}

	return f.Value
}

func stringField(v sql.NullString) device.Field[string] {
	if !v.Valid {
		return device.Field[string]{}
	}

	return device.Some(v.String)
}
