package port

import (
	"context"
	"time"
)

// DocumentStore keeps supporting documents under generated keys
type DocumentStore interface {
	// Store saves content and returns the generated key
	Store(ctx context.Context, content []byte, originalFilename string) (string, error)

	// Retrieve returns entity.ErrNotFound when no document has the key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes a document; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// ContentType maps a filename extension to the MIME type served on download
	ContentType(filename string) string
}

// StoredDocument is one entry of a DocumentInventory listing
type StoredDocument struct {
	Key        string
	ModifiedAt time.Time
}

// DocumentInventory enumerates stored documents so unreferenced ones can be removed
type DocumentInventory interface {
	List(ctx context.Context) ([]StoredDocument, error)
	Delete(ctx context.Context, key string) error
}
