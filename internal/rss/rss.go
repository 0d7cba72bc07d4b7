package rss

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"phposts/internal/domain"
)

const (
	FormatRSS  = "rss"
	FormatAtom = "atom"

	productHuntURL = "https://www.producthunt.com"
)

func Feed(posts []domain.Post, start, end string) *feeds.Feed {
	if end == "" {
		end = start
	}

	title := fmt.Sprintf("Product Hunt posts %s", start)
	if end != start {
		title = fmt.Sprintf("Product Hunt posts %s..%s", start, end)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: productHuntURL},
		Description: "Top Product Hunt launches by ranking, day by day.",
		Id:          fmt.Sprintf("producthunt-%s-%s", start, end),
	}

	for _, post := range posts {
		created := parseCreatedAt(post.CreatedAt)
		if created.After(feed.Created) {
			feed.Created = created
		}

		item := &feeds.Item{
			Title:       itemTitle(post),
			Link:        &feeds.Link{Href: PostLink(post)},
			Id:          post.ID,
			Description: post.Tagline,
			Created:     created,
		}

		if makers := makerNames(post.Makers); makers != "" {
			item.Author = &feeds.Author{Name: makers}
		}

		feed.Items = append(feed.Items, item)
	}

	return feed
}

func Render(feed *feeds.Feed, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatRSS:
		return feed.ToRss()
	case FormatAtom:
		return feed.ToAtom()
	default:
		return "", fmt.Errorf("unsupported feed format: %q", format)
	}
}

// PostLink prefers the product website and falls back to the Product Hunt page.
func PostLink(post domain.Post) string {
	if website := strings.TrimSpace(post.Website); website != "" {
		return website
	}

	if slug := strings.TrimSpace(post.Slug); slug != "" {
		return fmt.Sprintf("%s/posts/%s", productHuntURL, slug)
	}

	return productHuntURL
}

func itemTitle(post domain.Post) string {
	name := strings.TrimSpace(post.Name)
	tagline := strings.TrimSpace(post.Tagline)

	switch {
	case name == "":
		return tagline
	case tagline == "":
		return name
	default:
		return name + ": " + tagline
	}
}

func makerNames(makers []domain.Maker) string {
	names := make([]string, 0, len(makers))
	for _, m := range makers {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = strings.TrimSpace(m.Username)
		}
		if name != "" {
			names = append(names, name)
		}
	}

	return strings.Join(names, ", ")
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}

	return t
}
