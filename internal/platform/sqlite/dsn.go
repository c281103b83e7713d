package sqlite

import "strings"

// connection parameters every store connection needs, keyed by the prefix
// that marks a caller-supplied override
var dsnParams = []struct {
	prefix string
	param  string
}{
	{"_pragma=busy_timeout", "_pragma=busy_timeout(5000)"},
	{"_pragma=journal_mode", "_pragma=journal_mode(WAL)"},
	{"_txlock=", "_txlock=immediate"},
}

// DSN appends the busy timeout, WAL journal and immediate transaction
// parameters to a SQLite path or file: URI unless it already sets them.
func DSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	for _, p := range dsnParams {
		if strings.Contains(dsn, p.prefix) {
			continue
		}
		sep := "&"
		if !strings.Contains(dsn, "?") {
			sep = "?"
		}
		dsn += sep + p.param
	}
	return dsn
}
