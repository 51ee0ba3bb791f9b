package books

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/binder"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/openlibrary"
	"github.com/shelfmark/shelfmark/pkg/weburl"
)

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
)

// MetadataFetcher is the slice of *openlibrary.Client the enricher needs.
type MetadataFetcher interface {
	FetchJSON(ctx context.Context, rawURL string) (openlibrary.Document, error)
	ResolveKey(key string) string
}

// Persister durably stores an enriched book and returns its stored state.
// Create assigns the id (and slug, when empty); uniqueness violations come
// back as ErrConflict.
type Persister interface {
	Persist(ctx context.Context, book *models.Book, op Operation) (*models.Book, error)
}

// BookWriteRequest is the caller-writable part of a book. Title and author
// are never taken from the caller.
type BookWriteRequest struct {
	Operation Operation
	// Existing is the stored book an update replaces. Required for updates.
	Existing *models.Book

	Book            string
	Condition       models.BookCondition
	IsPromoted      *bool
	PromotionStatus *models.PromotionStatus
	Slug            *string
}

type Enricher struct {
	metadata  MetadataFetcher
	persister Persister
}

func NewEnricher(metadata MetadataFetcher, persister Persister) *Enricher {
	return &Enricher{metadata: metadata, persister: persister}
}

// EnrichAndPersist validates req, resolves the title (required) and first
// author (best effort) from the catalog, and hands the result to the
// persister. Nothing is written unless every earlier step succeeded.
func (e *Enricher) EnrichAndPersist(ctx context.Context, req BookWriteRequest) (*models.Book, error) {
	if err := validateWrite(req); err != nil {
		return nil, err
	}

	doc, err := e.metadata.FetchJSON(ctx, req.Book)
	if err != nil {
		return nil, metadataUnavailableError(err)
	}
	title, ok := doc.String("title")
	if !ok {
		return nil, malformedMetadataError("The book's metadata has no title.")
	}

	book := &models.Book{}
	current := models.PromotionStatus("")
	if req.Operation == OperationUpdate {
		copied := *req.Existing
		book = &copied
		current = req.Existing.PromotionStatus
	}

	book.Book = req.Book
	book.Condition = req.Condition
	book.Title = title
	book.Author = e.fetchAuthor(ctx, doc)
	book.PromotionStatus = ResolvePromotionStatus(current, req.PromotionStatus, req.IsPromoted)
	book.SyncPromotion()
	if req.Slug != nil {
		book.Slug = *req.Slug
	}

	stored, err := e.persister.Persist(ctx, book, req.Operation)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return stored, nil
}

// fetchAuthor resolves authors[0].key to the author's name. Failures are
// logged and yield nil.
func (e *Enricher) fetchAuthor(ctx context.Context, doc openlibrary.Document) *string {
	key, ok := doc.FirstAuthorKey()
	if !ok {
		return nil
	}

	authorURL := e.metadata.ResolveKey(key)
	author, err := e.metadata.FetchJSON(ctx, authorURL)
	if err != nil {
		logger.FromContext(ctx).Err(err).Warn("author lookup failed", logger.Data{
			"author_url":  authorURL,
			"status_code": openlibrary.StatusCode(err),
		})
		return nil
	}

	name, ok := author.String("name")
	if !ok {
		return nil
	}
	return &name
}

func validateWrite(req BookWriteRequest) error {
	switch req.Operation {
	case OperationCreate:
	case OperationUpdate:
		if req.Existing == nil {
			return errors.New("update requires the existing book")
		}
	default:
		return errors.Errorf("unknown operation %q", req.Operation)
	}

	if err := weburl.ValidateHTTPS(req.Book); err != nil {
		return validationError(`"book" must be an https URL with a public top-level domain`)
	}
	if !req.Condition.Valid() {
		return validationError(`"condition" is not a known book condition`)
	}
	if req.PromotionStatus != nil && !req.PromotionStatus.Valid() {
		return validationError(`"promotion_status" must be one of the following: "None", "Basic", "Pro"`)
	}
	if req.Slug != nil && !binder.IsSlug(*req.Slug) {
		return validationError(`"slug" must be at least 5 characters of lowercase letters, digits, and hyphens`)
	}
	return nil
}
