// Package migrations embeds the versioned SQL schema so binaries do not
// depend on the working directory.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair
//
//go:embed *.sql
var FS embed.FS
