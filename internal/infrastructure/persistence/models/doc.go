// Package models holds the GORM rows behind the storefront tables and the
// mappers between them and the domain aggregates. Domain packages never
// import it.
//
// Money columns are numeric(12,2) and map to decimal.Decimal. Configuration
// options and order addresses are stored as JSON columns (datatypes.JSON).
// AllModels lists every row type for sqlite-backed tests that AutoMigrate
// instead of running the SQL migrations.
package models
