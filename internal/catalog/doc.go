// Package catalog maintains a SQLite inventory of pulled media files and
// their transcript artifacts, with per-file quality stats and a TSV export.
package catalog
