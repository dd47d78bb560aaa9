package cdr

import "context"

// Document type names used by the import.
const (
	DocTypeMedia            = "Media"
	DocTypeGlossaryTermName = "GlossaryTermName"
)

// Document is one CDR document as exchanged with the document service.
type Document struct {
	ID      int
	DocType string
	Title   string
	XML     []byte
	Blob    []byte
}

// SaveOptions is the flag set passed with every save. The storage service
// applies them atomically: validation, versioning, publication, and unlock
// happen in a single call or not at all.
type SaveOptions struct {
	Validate    bool
	Version     bool
	Publishable bool
	Unlock      bool
	Comment     string
	Reason      string
}

// Action names checked against the session before an import is offered.
const (
	ActionAddDocument    = "ADD DOCUMENT"
	ActionModifyDocument = "MODIFY DOCUMENT"
	ActionAudioImport    = "AUDIO IMPORT"
)

// Permission is one (action, document type) pair; DocType is empty for
// actions that are not tied to a document type.
type Permission struct {
	Action  string
	DocType string
}

func (p Permission) String() string {
	if p.DocType == "" {
		return p.Action
	}
	return p.Action + ":" + p.DocType
}

// Session answers permission questions for the account running the import.
type Session interface {
	User() string
	CanDo(ctx context.Context, action, docType string) (bool, error)
}

// DocumentService is the narrow slice of the CDR document store the import
// uses. CheckOut acquires the document lock; Save with Unlock, or Unlock,
// releases it.
type DocumentService interface {
	DocType(ctx context.Context, id int) (string, error)
	Title(ctx context.Context, id int) (string, error)
	CheckOut(ctx context.Context, id int, comment string) (*Document, error)
	Create(ctx context.Context, doc *Document, opts SaveOptions) (int, error)
	Save(ctx context.Context, doc *Document, opts SaveOptions) error
	Unlock(ctx context.Context, id int) error
}

// Settings reads values from the ctl table. ok is false when no active row exists.
type Settings interface {
	Setting(ctx context.Context, group, name string) (value string, ok bool, err error)
}

// LinkIndex reports which documents already carry a given linking path in the
// query-term index.
type LinkIndex interface {
	DocsWithPath(ctx context.Context, pathPattern string) (map[int]struct{}, error)
}
