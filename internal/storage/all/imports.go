// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available at
// runtime:
//
//   - "mysql"  (targetmysql/internal/storage/mysql)
//   - "sqlite" (targetmysql/internal/storage/sqlite)
//
// Typical usage (in cmd/schema-sync/main.go or a similar wiring layer):
//
//	import (
//	    _ "targetmysql/internal/storage/all" // enable all built-in backends
//
//	    "targetmysql/internal/storage"
//	)
//
// A binary that supports only one backend can import that backend package
// directly instead of this one.
package all

import (
	_ "targetmysql/internal/storage/mysql"
	_ "targetmysql/internal/storage/sqlite"
)
