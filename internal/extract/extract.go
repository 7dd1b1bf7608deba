// Package extract reads titles, image sources and listing links off portal
// pages.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/site"
)

// Querier is the part of a page extraction needs.
type Querier interface {
	Select(ctx context.Context, selector string) (browser.Node, error)
	SelectAll(ctx context.Context, selector string) ([]browser.Node, error)
}

// Item is one image on a comic page. An unresolved item had no attribute at
// the source position.
type Item struct {
	Source   string
	Resolved bool
}

type Extractor struct {
	sel site.Selectors
}

func New(sel site.Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// Title is the comic title of a viewer page.
func (e *Extractor) Title(ctx context.Context, q Querier) (string, error) {
	n, err := q.Select(ctx, e.sel.Title)
	if err != nil {
		return "", fmt.Errorf("comic title: %w", err)
	}

	v, ok := n.Attr(e.sel.TitleAttr)
	if !ok {
		return "", fmt.Errorf("comic title: %w: no %q attribute on %s",
			browser.ErrElementNotFound, e.sel.TitleAttr, e.sel.Title)
	}

	return v, nil
}

// SearchTitle is the heading of a listing page.
func (e *Extractor) SearchTitle(ctx context.Context, q Querier) (string, error) {
	n, err := q.Select(ctx, e.sel.SearchTitle)
	if err != nil {
		return "", fmt.Errorf("listing title: %w", err)
	}

	return strings.TrimSpace(n.Text()), nil
}

// Images returns the content items of a viewer page in DOM order. Lazy-load
// placeholders, whose source attribute is present but empty, are dropped.
func (e *Extractor) Images(ctx context.Context, q Querier) ([]Item, error) {
	nodes, err := q.SelectAll(ctx, e.sel.Images)
	if err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}

	items := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		src, err := n.AttrAt(e.sel.SourceAttrIndex)
		switch {
		case errors.Is(err, browser.ErrAttrIndex):
			items = append(items, Item{})
		case err != nil:
			return nil, err
		case src == "":
		default:
			items = append(items, Item{Source: src, Resolved: true})
		}
	}

	return items, nil
}

// Links returns the hrefs of a listing page in DOM order, duplicates
// included. Anchors without an href are left out.
func (e *Extractor) Links(ctx context.Context, q Querier) ([]string, error) {
	nodes, err := q.SelectAll(ctx, e.sel.Links)
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}

	links := make([]string, 0, len(nodes))
	for _, n := range nodes {
		href, ok := n.Attr("href")
		if !ok || href == "" {
			continue
		}
		links = append(links, TrimPageSuffix(href, e.sel.PageSuffix))
	}

	return links, nil
}

// TrimPageSuffix strips suffix from the end of href only.
func TrimPageSuffix(href, suffix string) string {
	if suffix == "" {
		return href
	}

	return strings.TrimSuffix(href, suffix)
}
