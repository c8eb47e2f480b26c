package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

type openGraph struct {
	Title       string
	Description string
	Image       string
}

func (c *Crawler) fetchOpenGraph(ctx context.Context, link string) (*openGraph, error) {
	resp, err := c.web.R().SetContext(ctx).Get(link)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	return parseOpenGraph(bytes.NewReader(resp.Body()))
}

// parseOpenGraph 读取 og:* meta，缺少 og:title 时退回 <title>
func parseOpenGraph(r io.Reader) (*openGraph, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	og := &openGraph{}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var key, content string
				for _, a := range n.Attr {
					switch a.Key {
					case "property", "name":
						key = a.Val
					case "content":
						content = strings.TrimSpace(a.Val)
					}
				}
				switch key {
				case "og:title":
					og.Title = content
				case "og:description", "description":
					if og.Description == "" || key == "og:description" {
						og.Description = content
					}
				case "og:image":
					og.Image = content
				}
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	if og.Title == "" {
		og.Title = title
	}
	return og, nil
}
