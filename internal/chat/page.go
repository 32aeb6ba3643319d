package chat

import (
	"context"

	"github.com/benvon/focusdock/internal/models"
)

// PageSource supplies the text of the page the user is looking at
type PageSource interface {
	CurrentPage(ctx context.Context) (models.PageContent, error)
}

// StaticPage is a PageSource for content already in hand, such as a page
// sent along with a chat request.
type StaticPage models.PageContent

func (p StaticPage) CurrentPage(context.Context) (models.PageContent, error) {
	return models.PageContent(p), nil
}

// PageFunc adapts a function to PageSource
type PageFunc func(ctx context.Context) (models.PageContent, error)

func (f PageFunc) CurrentPage(ctx context.Context) (models.PageContent, error) {
	return f(ctx)
}
