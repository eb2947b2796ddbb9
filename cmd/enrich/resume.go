package enrich

import (
	"io"
	"strings"

	"github.com/lepinkainen/maldb/cmd/importer"
	"github.com/lepinkainen/maldb/internal/csvutil"
)

// LoadExistingImages reads a prior run's output and returns a map from
// external id to recorded image value. Only rows whose image cell is
// non-empty count, so ids that came up empty get retried on the next
// run. A missing or unreadable file yields an empty map.
func LoadExistingImages(outputPath string) map[string]string {
	reader, err := csvutil.Open(outputPath)
	if err != nil {
		return nil
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	idCol := importer.ResolveColumns(header).MALID
	imageCol := lastImageColumn(header)
	if idCol < 0 || imageCol < 0 {
		return nil
	}

	existing := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		malID := strings.TrimSpace(row.Get(idCol))
		image := row.Get(imageCol)
		if malID != "" && image != "" {
			existing[malID] = image
		}
	}
	return existing
}

// lastImageColumn returns the rightmost header column named "image".
// When a run inserts its own image column next to one the input already
// carried, the inserted one is the later.
func lastImageColumn(header []string) int {
	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "image") {
			col = i
		}
	}
	return col
}
