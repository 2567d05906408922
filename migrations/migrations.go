// Package migrations embeds the SQL schema applied by golang-migrate at
// startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
