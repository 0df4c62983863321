// Package datarecording persists session results into a database.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"
	"github.com/pkg/errors"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store rows of flat structs.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any) error

	// ListTables returns the names of the tables created so far.
	ListTables() []string

	// Flush writes all buffered entries.
	Flush() error

	// Close flushes and releases the database.
	Close() error
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	tableOrder []string
	batchSize  int
	entryCount int
}

// NewSQLite creates a recorder that writes into <path>.sqlite3. An empty path
// picks nftest_<id>. An existing file is never overwritten.
func NewSQLite(path string) (DataRecorder, error) {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 10000,
		tables:    make(map[string]*table),
	}

	if err := w.init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = w.Flush() })

	return w, nil
}

// NewWithDB creates a recorder on an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 10000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { _ = w.Flush() })

	return w
}

// Filename returns the database file a path maps to.
func Filename(path string) string {
	return strings.TrimSuffix(path, ".sqlite3") + ".sqlite3"
}

func (t *sqliteWriter) init() error {
	if t.dbName == "" {
		t.dbName = "nftest_" + xid.New().String()
	}

	filename := Filename(t.dbName)

	// Claiming the file exclusively keeps two recorders off the same path.
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "claiming recording database %s", filename)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "claiming recording database %s", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return errors.Wrap(err, "opening recording database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "connecting to recording database %s", filename)
	}

	t.DB = db

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	return nil
}

func isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)
	if types.Kind() != reflect.Struct {
		return fmt.Errorf("entry %s is not a struct", types)
	}

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !isAllowedType(field.Type.Kind()) {
			return fmt.Errorf("field %s of %s has unsupported type %s",
				field.Name, types, field.Type)
		}
	}

	return nil
}

func fieldValues(entry any) []any {
	v := reflect.ValueOf(entry)

	values := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, v.Field(i).Interface())
	}

	return values
}

func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) error {
	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	if _, err := t.Exec(createTableSQL); err != nil {
		return errors.Wrapf(err, "creating table %s", tableName)
	}

	t.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
	t.tableOrder = append(t.tableOrder, tableName)

	return nil
}

func (t *sqliteWriter) InsertData(tableName string, entry any) error {
	table, exists := t.tables[tableName]
	if !exists {
		return fmt.Errorf("table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != table.structType {
		return fmt.Errorf("table %s stores %s, got %T",
			tableName, table.structType, entry)
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	if t.entryCount >= t.batchSize {
		return t.Flush()
	}

	return nil
}

func (t *sqliteWriter) ListTables() []string {
	tables := make([]string, len(t.tableOrder))
	copy(tables, t.tableOrder)

	return tables
}

func (t *sqliteWriter) Flush() error {
	if t.entryCount == 0 || t.DB == nil {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	for _, tableName := range t.tableOrder {
		table := t.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		if err := t.insert(tx, tableName, table.entries); err != nil {
			_ = tx.Rollback()
			return err
		}

		table.entries = nil
	}

	t.entryCount = 0

	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (t *sqliteWriter) insert(tx *sql.Tx, tableName string, entries []any) error {
	n := structs.Names(entries[0])
	for i := range n {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName + " VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return errors.Wrapf(err, "preparing insert into %s", tableName)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.Exec(fieldValues(entry)...); err != nil {
			return errors.Wrapf(err, "inserting into %s", tableName)
		}
	}

	return nil
}

func (t *sqliteWriter) Close() error {
	if t.DB == nil {
		return nil
	}

	if err := t.Flush(); err != nil {
		return err
	}

	err := t.DB.Close()
	t.DB = nil

	return err
}
