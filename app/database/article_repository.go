package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ArticleRepository handles database operations for ingested articles
type ArticleRepository struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// InsertArticleIfAbsent stores the article unless (feedID, GUIDOrHash) already
// exists. It reports whether a new row was written; a duplicate is not an error.
func (r *ArticleRepository) InsertArticleIfAbsent(ctx context.Context, feedID int64, article NewArticle) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO articles (feed_id, title, teaser, url, published_at, guid_or_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, guid_or_hash) DO NOTHING
	`, feedID, nullableString(article.Title), article.Teaser, article.URL, article.PublishedAt, article.GUIDOrHash, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert article: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return n > 0, nil
}

// ListArticles returns the newest articles matching filter
func (r *ArticleRepository) ListArticles(ctx context.Context, filter ArticleFilter) ([]Article, error) {
	var (
		where []string
		args  []any
	)

	if filter.FeedID != nil {
		where = append(where, "feeds.id = ?")
		args = append(args, *filter.FeedID)
	} else if filter.Source != "" {
		where = append(where, "feeds.name = ?")
		args = append(args, filter.Source)
	}

	if filter.ListID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM list_items WHERE list_items.article_id = articles.id AND list_items.list_id = ?)")
		args = append(args, *filter.ListID)
	}

	if query := strings.TrimSpace(filter.Query); query != "" {
		like := "%" + query + "%"
		where = append(where, "(articles.title LIKE ? OR articles.teaser LIKE ? OR feeds.name LIKE ?)")
		args = append(args, like, like, like)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultArticleLimit
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT articles.id, articles.feed_id, COALESCE(articles.title, '') AS title,
			articles.teaser, articles.url, articles.published_at, articles.guid_or_hash, articles.created_at,
			feeds.name AS source_name, feeds.logo AS source_logo, COALESCE(feeds.logo_mime, '') AS source_logo_mime
		FROM articles
		JOIN feeds ON feeds.id = articles.feed_id`)
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString("\n\t\tORDER BY articles.published_at DESC, articles.id DESC\n\t\tLIMIT ?")
	args = append(args, limit)

	articles := []Article{}
	if err := r.db.SelectContext(ctx, &articles, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepository) ListsForArticle(ctx context.Context, articleID int64) ([]ListRef, error) {
	lists := []ListRef{}
	err := r.db.SelectContext(ctx, &lists, `
		SELECT lists.id, lists.name, lists.color
		FROM list_items
		JOIN lists ON lists.id = list_items.list_id
		WHERE list_items.article_id = ?
		ORDER BY lists.id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list article lists: %w", err)
	}
	return lists, nil
}
