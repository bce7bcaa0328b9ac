package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/filex"
	"github.com/dmitrijs2005/gophkeeper-session/internal/logging"
)

// FilePerm is applied to the document on every write.
const FilePerm os.FileMode = 0o600

// Store is the read/read-modify-write contract the rest of the client uses.
type Store interface {
	View(ctx context.Context, fn func(doc *Document) error) error
	Update(ctx context.Context, fn func(doc *Document) error) error
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLoadCheck registers a check run after every load and before the
// caller's function. A failing check aborts the operation with no write.
func WithLoadCheck(check func(doc *Document) error) Option {
	return func(s *FileStore) { s.loadChecks = append(s.loadChecks, check) }
}

// WithInit registers a function applied in Update when the file does not
// exist yet or is empty, before the caller's function.
func WithInit(init func(doc *Document) error) Option {
	return func(s *FileStore) { s.inits = append(s.inits, init) }
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(s *FileStore) { s.log = l }
}

// FileStore keeps a Document in a single JSON file.
type FileStore struct {
	path       string
	loadChecks []func(doc *Document) error
	inits      []func(doc *Document) error
	log        logging.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for the document at path. The file is not
// touched until the first View or Update.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, log: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the document.
func (s *FileStore) Path() string { return s.path }

// load reads the current document. fresh is true when the file is absent
// or holds no entries.
func (s *FileStore) load(ctx context.Context) (doc *Document, fresh bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug(ctx, "data file not found, starting empty", "path", s.path)
			return NewDocument(), true, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %w", common.ErrStorage, s.path, err)
	}

	doc, err = parseDocument(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", common.ErrStorage, s.path, err)
	}

	for _, check := range s.loadChecks {
		if err := check(doc); err != nil {
			return nil, false, err
		}
	}
	return doc, doc.Len() == 0, nil
}

// View loads a fresh copy of the document and passes it to fn. Changes fn
// makes to the document are discarded.
func (s *FileStore) View(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update loads a fresh copy of the document, applies fn, and atomically
// replaces the file with the result. If fn returns an error nothing is
// written.
func (s *FileStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, fresh, err := s.load(ctx)
	if err != nil {
		return err
	}

	if fresh {
		for _, init := range s.inits {
			if err := init(doc); err != nil {
				return err
			}
		}
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := doc.marshal()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if err := filex.WriteFileAtomic(s.path, data, FilePerm); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.log.Debug(ctx, "data file written", "path", s.path, "entries", doc.Len())
	return nil
}
