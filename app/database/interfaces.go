package database

import (
	"context"
)

type FeedStore interface {
	ListFeeds(ctx context.Context) ([]Feed, error)
	GetFeed(ctx context.Context, id int64) (*Feed, error)
	CountFeeds(ctx context.Context) (int, error)

	CreateFeed(ctx context.Context, in FeedInput) (*Feed, error)
	UpdateFeed(ctx context.Context, id int64, in FeedInput) (*Feed, error)
	UpdateFeedLogo(ctx context.Context, id int64, data []byte, mime string) error
	DeleteFeed(ctx context.Context, id int64) error
}

type ArticleStore interface {
	InsertArticleIfAbsent(ctx context.Context, feedID int64, article NewArticle) (bool, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]Article, error)
	ListsForArticle(ctx context.Context, articleID int64) ([]ListRef, error)
}

type ListStore interface {
	ListLists(ctx context.Context) ([]List, error)
	GetList(ctx context.Context, id int64) (*List, error)

	CreateList(ctx context.Context, in ListInput) (*List, error)
	UpdateList(ctx context.Context, id int64, in ListInput) (*List, error)
	DeleteList(ctx context.Context, id int64) error

	AddListItem(ctx context.Context, listID, articleID int64) error
	RemoveListItem(ctx context.Context, listID, articleID int64) error
}

var (
	_ FeedStore    = (*FeedRepository)(nil)
	_ ArticleStore = (*ArticleRepository)(nil)
	_ ListStore    = (*ListRepository)(nil)
)
