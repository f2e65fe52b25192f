// Package migrations embeds the api-service schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
