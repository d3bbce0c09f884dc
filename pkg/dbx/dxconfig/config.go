// Package dxconfig implements the connection configuration surface from
// spec.md §6: a driver name plus an opaque, driver-specific connection
// string, with the one cross-driver convention the spec singles out (the
// MySQL-style key=value parser) exposed as a reusable parser other
// callers can opt into.
package dxconfig

// ConnectionConfig names the registered driver to dial and the
// connection string to hand it. Every driver beyond the MySQL-style
// convention treats DSN as opaque and passes it straight through to its
// client library.
type ConnectionConfig struct {
	Driver string
	DSN    string
}

// New builds a ConnectionConfig for driver/dsn.
func New(driver, dsn string) ConnectionConfig {
	return ConnectionConfig{Driver: driver, DSN: dsn}
}
