// Package migrations embeds the SQL schema applied on start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
