// Package objects contains the API-facing representations shared by the
// handlers and the biz services. They are kept apart from the storage
// models so response shapes can evolve without touching the schema.
package objects
