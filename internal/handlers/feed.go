package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"ideaboard/internal/services"
	"ideaboard/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const feedSize = 20

type FeedHandler struct {
	ideas   *services.IdeaService
	siteURL string
}

func NewFeedHandler(db *gorm.DB, siteURL string) *FeedHandler {
	return &FeedHandler{
		ideas:   services.NewIdeaService(db),
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// RobotsTxt keeps crawlers off the board; it is an internal tool.
func (h *FeedHandler) RobotsTxt(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}

// RSSFeed serves the newest ideas as RSS 2.0.
func (h *FeedHandler) RSSFeed(c *gin.Context) {
	ideas, err := h.ideas.Recent(feedSize)
	if err != nil {
		logIfInternal(c, err)
		c.Status(http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Idea Board</title>
    <link>` + h.siteURL + `/</link>
    <description>Newest improvement ideas</description>
    <language>en</language>
    <lastBuildDate>` + time.Now().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + h.siteURL + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for _, idea := range ideas {
		link := fmt.Sprintf("%s/idea/%d", h.siteURL, idea.ID)
		content := string(utils.RenderMarkdown(idea.Description))
		fmt.Fprintf(&b, `    <item>
      <title>%s</title>
      <link>%s</link>
      <description><![CDATA[%s]]></description>
      <author>%s</author>
      <category>%s</category>
      <pubDate>%s</pubDate>
      <guid isPermaLink="true">%s</guid>
    </item>
`,
			escapeXML(idea.Title), link,
			strings.ReplaceAll(content, "]]>", "]]&gt;"),
			escapeXML(idea.Submitter.Username), escapeXML(idea.Category.Name),
			idea.CreatedAt.Format(time.RFC1123Z), link)
	}

	b.WriteString("  </channel>\n</rss>")

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func escapeXML(s string) string {
	return html.EscapeString(s)
}
