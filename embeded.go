package authbackend

import "embed"

// Migrations holds the postgres schema applied on startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Locales holds the translated message catalogs (en, ar).
//
//go:embed locales/*.toml
var Locales embed.FS
