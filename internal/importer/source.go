package importer

import (
	"fmt"
	"os"
	"time"

	"github.com/nikbrunner/bmtag/internal/locator"
	"github.com/nikbrunner/bmtag/internal/model"
)

// ParseSource reads the records of one discovered store.
func ParseSource(src locator.Source) ([]model.BookmarkRecord, error) {
	if src.Format == locator.FormatFirefox {
		return ParseFirefox(src.Path)
	}

	file, err := os.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch src.Format {
	case locator.FormatChromium:
		return ParseChromium(file, src.Browser)
	case locator.FormatSafari:
		return ParseSafari(file, time.Now())
	case locator.FormatHTML:
		return ParseHTMLBookmarks(file)
	default:
		return nil, fmt.Errorf("unknown bookmark format %d for %s", src.Format, src.Path)
	}
}
