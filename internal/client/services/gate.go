package services

import (
	"fmt"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storage"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/storagekey"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/logging"
)

// OpenStore returns the data file store guarded by the format version gate.
//
// Every load of a non-empty document whose formatVersion is missing or older
// than storagekey.MinFormatVersion fails with *common.FormatVersionError
// before anything is written. An empty document is stamped with
// storagekey.MinFormatVersion on its first write; newer versions are left
// as they are.
func OpenStore(path string, logger logging.Logger) *storage.FileStore {
	return storage.NewFileStore(path,
		storage.WithLogger(logger),
		storage.WithLoadCheck(checkFormatVersion),
		storage.WithInit(stampFormatVersion),
	)
}

func formatVersion(doc *storage.Document) (int, error) {
	var v int
	if _, err := doc.Get(storagekey.Global(storagekey.FormatVersion), &v); err != nil {
		return 0, fmt.Errorf("%w: formatVersion: %w", common.ErrFormatVersionUnsupported, err)
	}
	return v, nil
}

func checkFormatVersion(doc *storage.Document) error {
	if doc.Len() == 0 {
		return nil
	}
	v, err := formatVersion(doc)
	if err != nil {
		return err
	}
	if v < storagekey.MinFormatVersion {
		return &common.FormatVersionError{Found: v, Minimum: storagekey.MinFormatVersion}
	}
	return nil
}

func stampFormatVersion(doc *storage.Document) error {
	return doc.Set(storagekey.Global(storagekey.FormatVersion), storagekey.MinFormatVersion)
}
