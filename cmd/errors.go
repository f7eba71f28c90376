package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"notas/internal/backup"
	"notas/internal/repository"
	"notas/internal/schema"
	"notas/internal/store"
)

// handleStoreError provides user-friendly error messages for ledger failures
func handleStoreError(err error, log zerolog.Logger) error {
	var (
		validationErr *schema.ValidationError
		notFoundErr   *repository.NotFoundError
		schemaErr     *store.SchemaVersionError
		ioErr         *store.IOError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn().
			Str("field", validationErr.Field).
			Interface("value", validationErr.Value).
			Msg("Input rejected")
		return fmt.Errorf("invalid %s: %s", validationErr.Field, validationErr.Reason)
	case errors.As(err, &notFoundErr):
		log.Warn().
			Str("kind", notFoundErr.Kind).
			Int64("id", notFoundErr.ID).
			Msg("Record not found")
		return fmt.Errorf("%s %d not found. Use 'notas %s list' to see stored ids",
			notFoundErr.Kind, notFoundErr.ID, notFoundErr.Kind)
	}

	log.Error().Err(err).Msg("Operation failed")

	switch {
	case errors.As(err, &schemaErr):
		return fmt.Errorf("%s was written by a newer version of notas (schema %d, this build supports %d). Please upgrade",
			schemaErr.Path, schemaErr.Found, schemaErr.Supported)
	case errors.Is(err, store.ErrCorruptStore):
		return fmt.Errorf("the data file is corrupt and was left untouched. "+
			"Restore a backup with 'notas restore <archive>' or fix the file by hand.\n"+
			"Original error: %v", err)
	case errors.Is(err, backup.ErrArchiveExists):
		return fmt.Errorf("%v. Choose another file name or pass a directory", err)
	case errors.Is(err, backup.ErrInvalidArchive):
		return fmt.Errorf("the backup archive cannot be used: %v", err)
	case errors.As(err, &ioErr):
		return fmt.Errorf("could not %s %s. Check that the path exists and is writable: %v",
			ioErr.Op, ioErr.Path, ioErr.Err)
	default:
		return fmt.Errorf("operation failed: %w", err)
	}
}
