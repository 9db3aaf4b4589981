package mat

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableMatrix = "m"

	shortTimeout = 3 * time.Second
	longTimeout  = 48 * time.Hour
)

// DiskMatrix is a sparse matrix stored in a sqlite database, for Hamiltonians that do not fit in memory.
type DiskMatrix struct {
	Path string
	rows int
	cols int

	db *sql.DB
}

func DiskM(dbPath string, dense [][]complex128) *DiskMatrix {
	m, err := diskM(dbPath, dense)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return m
}

func diskM(dbPath string, dense [][]complex128) (*DiskMatrix, error) {
	m, err := NewDiskMatrix(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m.rows, m.cols = len(dense), len(dense[0])

	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	err = m.tx(ctx, func(w *writer) error {
		for i, row := range dense {
			for j, v := range row {
				if err := w.set(i, j, v); err != nil {
					return errors.Wrap(err, "")
				}
			}
		}
		return nil
	})
	if err != nil {
		m.Close()
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// NewDiskMatrix creates an empty 0x0 matrix backed by a new database at dbPath.
func NewDiskMatrix(dbPath string) (*DiskMatrix, error) {
	m := &DiskMatrix{Path: dbPath}
	var err error
	m.db, err = newDB(m.Path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// Close closes the database and removes its file.
func (m *DiskMatrix) Close() error {
	var err error
	if err1 := m.db.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err1 := os.Remove(m.Path); err1 != nil && err == nil {
		err = err1
	}
	return err
}

func (m *DiskMatrix) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	if err := deleteAll(ctx, m.db); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	if err := deleteAll(ctx, m.db); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	err := m.tx(ctx, func(w *writer) error {
		return w.set(0, 0, v)
	})
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) Rows() int { return m.rows }
func (m *DiskMatrix) Cols() int { return m.cols }

func (m *DiskMatrix) At(i, j int) complex128 {
	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	v, err := at(ctx, m.db, i, j)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return v
}

func (m *DiskMatrix) COO() *COO {
	b, err := m.coo()
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return b
}

func (m *DiskMatrix) coo() (*COO, error) {
	b := newCOO(m.rows, m.cols)

	ctx, cancel := context.WithTimeout(context.Background(), longTimeout)
	defer cancel()
	err := scanAll(ctx, m.db, func(t Triple) error {
		b.Data = append(b.Data, t)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}

func (m *DiskMatrix) Add(c complex128, b Matrix) {
	if err := m.add(c, b.COO()); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) add(c complex128, b *COO) error {
	if b.rows != m.rows || b.cols != m.cols {
		return errors.Wrap(ErrShape, fmt.Sprintf("%d %d %d %d", m.rows, m.cols, b.rows, b.cols))
	}

	ctx, cancel := context.WithTimeout(context.Background(), longTimeout)
	defer cancel()
	return m.tx(ctx, func(w *writer) error {
		for _, bv := range b.Data {
			av, err := w.at(bv.Row, bv.Col)
			if err != nil {
				return errors.Wrap(err, "")
			}
			if err := w.set(bv.Row, bv.Col, av+c*bv.V); err != nil {
				return errors.Wrap(err, "")
			}
		}
		return nil
	})
}

func (m *DiskMatrix) Kron(b *COO) {
	if err := m.kron(b); err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
}

func (m *DiskMatrix) kron(b *COO) error {
	// Stream the current entries through a CSV file, since the table is rewritten in place.
	dir, err := os.MkdirTemp("", "")
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer os.RemoveAll(dir)
	if err := m.WriteCOO(dir); err != nil {
		return errors.Wrap(err, "")
	}
	r, err := NewCOOReader(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), longTimeout)
	defer cancel()
	if err := deleteAll(ctx, m.db); err != nil {
		return errors.Wrap(err, fmt.Sprintf("db %s", m.Path))
	}
	m.rows, m.cols = m.rows*b.rows, m.cols*b.cols

	return m.tx(ctx, func(w *writer) error {
		for {
			av, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return errors.Wrap(err, "")
			}

			for _, bv := range b.Data {
				ky := av.Row*b.rows + bv.Row
				kx := av.Col*b.cols + bv.Col
				if err := w.set(ky, kx, av.V*bv.V); err != nil {
					return errors.Wrap(err, "")
				}
			}
		}
		return nil
	})
}

func (m *DiskMatrix) NumNonZero() int {
	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	var n int
	sqlStr := fmt.Sprintf("SELECT count(1) FROM %s", tableMatrix)
	if err := m.db.QueryRowContext(ctx, sqlStr).Scan(&n); err != nil {
		panic(fmt.Sprintf("%+v", errors.Wrap(err, "")))
	}
	return n
}

func (m *DiskMatrix) WriteCOO(dir string) error {
	c, err := m.coo()
	if err != nil {
		return errors.Wrap(err, "")
	}
	return c.WriteCOO(dir)
}

// writer writes entries within a single transaction.
type writer struct {
	ctx    context.Context
	tx     *sql.Tx
	upsert *sql.Stmt
	del    *sql.Stmt
}

// set writes v at (i, j), deleting the entry when v is zero.
func (w *writer) set(i, j int, v complex128) error {
	var err error
	switch v {
	case 0:
		_, err = w.del.ExecContext(w.ctx, i, j)
	default:
		_, err = w.upsert.ExecContext(w.ctx, i, j, real(v), imag(v))
	}
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("%d %d %v", i, j, v))
	}
	return nil
}

func (w *writer) at(i, j int) (complex128, error) {
	sqlStr := fmt.Sprintf(`SELECT re, im FROM %s WHERE i=? AND j=?`, tableMatrix)
	return scanValue(w.tx.QueryRowContext(w.ctx, sqlStr, i, j))
}

func (m *DiskMatrix) tx(ctx context.Context, fn func(w *writer) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := &writer{ctx: ctx, tx: tx}
	w.upsert, err = tx.PrepareContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (i, j, re, im) VALUES (?, ?, ?, ?)`, tableMatrix))
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "")
	}
	defer w.upsert.Close()
	w.del, err = tx.PrepareContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE i=? AND j=?`, tableMatrix))
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "")
	}
	defer w.del.Close()

	if err := fn(w); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func at(ctx context.Context, db *sql.DB, i, j int) (complex128, error) {
	sqlStr := fmt.Sprintf(`SELECT re, im FROM %s WHERE i=? AND j=?`, tableMatrix)
	return scanValue(db.QueryRowContext(ctx, sqlStr, i, j))
}

func scanValue(row *sql.Row) (complex128, error) {
	var re, im float64
	err := row.Scan(&re, &im)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return cmplx.NaN(), errors.Wrap(err, "")
	default:
		return complex(re, im), nil
	}
}

func scanAll(ctx context.Context, db *sql.DB, fn func(Triple) error) error {
	sqlStr := fmt.Sprintf(`SELECT i, j, re, im FROM %s ORDER BY i, j`, tableMatrix)
	rows, err := db.QueryContext(ctx, sqlStr)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer rows.Close()

	for rows.Next() {
		var t Triple
		var re, im float64
		if err := rows.Scan(&t.Row, &t.Col, &re, &im); err != nil {
			return errors.Wrap(err, "")
		}
		t.V = complex(re, im)
		if err := fn(t); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}

	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), shortTimeout)
	defer cancel()
	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (i INTEGER, j INTEGER, re REAL, im REAL, PRIMARY KEY (i, j)) STRICT`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func deleteAll(ctx context.Context, db *sql.DB) error {
	sqlStr := fmt.Sprintf(`DELETE FROM %s`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
