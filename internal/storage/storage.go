package storage

import (
	"context"
	"errors"
)

var ErrDocumentNotFound = errors.New("document not found")

// Kind names one reference collection. Each kind is stored as a single JSON
// array document.
type Kind string

const (
	KindUsers       Kind = "users"
	KindRoles       Kind = "roles"
	KindPermissions Kind = "permissions"
	KindSSC         Kind = "stockSelectionCriteria"
	KindPools       Kind = "pools"
	KindLocations   Kind = "locations"
	KindAreas       Kind = "areas"
	KindStockLots   Kind = "stockLots"
)

var kinds = []Kind{
	KindUsers,
	KindRoles,
	KindPermissions,
	KindSSC,
	KindPools,
	KindLocations,
	KindAreas,
	KindStockLots,
}

func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Document returns the document name the kind is stored under.
func (k Kind) Document() string {
	return string(k) + ".json"
}

// VersionDocument names the document holding the version of the last write
// applied to the kind's document.
func (k Kind) VersionDocument() string {
	return string(k) + ".version.json"
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// DocumentStore keeps whole JSON documents by name. Get returns
// ErrDocumentNotFound (possibly wrapped) for a name that was never written.
type DocumentStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, body []byte) error
	Ping(ctx context.Context) error
}
