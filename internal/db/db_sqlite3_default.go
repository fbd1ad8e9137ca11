//go:build !(cgo && sqlite3_cgo)

package db

// The wasm build runs without cgo, so it is the default.
import (
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	driverID   = "ncruces/go-sqlite3"
	driverName = "sqlite3"
)
