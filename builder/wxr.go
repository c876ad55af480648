package builder

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/pageport"
)

// WXRPath is where block-based builders place their importable export.
const WXRPath = "export.xml"

// wxr renders a WordPress eXtended RSS document holding one draft page.
func wxr(t pageport.ThemeMetadata, content string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	rss.CreateAttr("xmlns:excerpt", "http://wordpress.org/export/1.2/excerpt/")
	rss.CreateAttr("xmlns:content", "http://purl.org/rss/1.0/modules/content/")
	rss.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	rss.CreateAttr("xmlns:wp", "http://wordpress.org/export/1.2/")

	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(title(t))
	if t.SourceURL != "" {
		channel.CreateElement("link").SetText(t.SourceURL)
	}
	channel.CreateElement("description").SetText(t.Description)
	channel.CreateElement("language").SetText("en-US")
	channel.CreateElement("wp:wxr_version").SetText("1.2")

	item := channel.CreateElement("item")
	item.CreateElement("title").SetText(title(t))
	item.CreateElement("dc:creator").CreateCData(cdata(t.Author))
	item.CreateElement("content:encoded").CreateCData(cdata(content))
	item.CreateElement("excerpt:encoded").CreateCData("")
	item.CreateElement("wp:post_id").SetText("1")
	item.CreateElement("wp:post_name").CreateCData(slug(t))
	item.CreateElement("wp:status").CreateCData("draft")
	item.CreateElement("wp:post_type").CreateCData("page")
	item.CreateElement("wp:comment_status").CreateCData("closed")

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, pageport.Errorf(pageport.EINTERNAL, "failed to write WXR: %v", err)
	}
	return out, nil
}

// cdata splits the CDATA terminator so content cannot close the section.
func cdata(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
