package source

import (
	"golang.org/x/net/html"

	"github.com/bookfetch/yes24-metadata/internal/scrape"
)

func scrapeSearchPage(text string) (*html.Node, error) {
	return scrape.ParseString(text)
}

// parseSearchResults walks the result listing and returns candidate
// detail-page URLs in listing order.
func parseSearchResults(doc *html.Node) []string {
	var urls []string
	for _, cell := range scrape.Nodes(doc, `//td[@class="goods_infogrp"]`) {
		href := scrape.FirstText(cell, `.//p[contains(@class, "goods_name")]/a/@href`)
		if href == "" {
			continue
		}
		urls = append(urls, absolutize(href))
	}
	return urls
}
