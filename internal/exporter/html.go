package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports a Chromium bookmark file to Netscape bookmark HTML.
// The bookmark bar becomes the personal toolbar folder; the other roots
// follow as plain folders. Children keep their stored order.
func ExportHTML(file *model.BookmarkFile) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, root := range file.Roots.Trees() {
		writeNode(&b, root, 1, root == file.Roots.BookmarkBar)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeNode recursively writes a folder or bookmark.
func writeNode(b *strings.Builder, n *model.Node, indent int, toolbar bool) {
	prefix := strings.Repeat("    ", indent)

	if !n.IsFolder() {
		fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"%s>%s</A>\n",
			prefix,
			html.EscapeString(n.URL),
			dateAttr("ADD_DATE", n.DateAdded),
			html.EscapeString(n.Name),
		)
		return
	}

	attrs := dateAttr("ADD_DATE", n.DateAdded) + dateAttr("LAST_MODIFIED", n.DateModified)
	if toolbar {
		attrs += ` PERSONAL_TOOLBAR_FOLDER="true"`
	}
	fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, attrs, html.EscapeString(n.Name))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)
	for _, child := range n.Children {
		writeNode(b, child, indent+1, false)
	}
	fmt.Fprintf(b, "%s</DL><p>\n", prefix)
}

// dateAttr renders a Chromium timestamp as Unix seconds; unset dates are
// left out.
func dateAttr(name string, t model.ChromeTime) string {
	if t == 0 {
		return ""
	}
	return fmt.Sprintf(` %s="%d"`, name, t.Time().Unix())
}
