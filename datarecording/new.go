package datarecording

import "fmt"

// Drivers.
const (
	SQLite     = "sqlite"
	ClickHouse = "clickhouse"
)

// New opens a recorder. For SQLite, target is the file path and may be
// empty. For ClickHouse, target is a DSN.
func New(driver, target string) (DataRecorder, error) {
	switch driver {
	case "", SQLite:
		return NewSQLite(target)
	case ClickHouse:
		if target == "" {
			return nil, fmt.Errorf("clickhouse recording needs a dsn")
		}

		return NewClickHouse(target)
	default:
		return nil, fmt.Errorf("unknown recording driver %q", driver)
	}
}
