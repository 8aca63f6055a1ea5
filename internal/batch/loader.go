package batch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-quake-impact/internal/grid"
)

// Loader reads ESRI ASCII layers from disk or over HTTP.
type Loader struct {
	client *http.Client
}

func NewLoader() *Loader {
	return &Loader{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Load reads the layer at path. http and https paths are downloaded first.
func (l *Loader) Load(ctx context.Context, path string) (*grid.Grid, grid.GeoReference, error) {
	if !isRemote(path) {
		return grid.ReadASCFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, grid.GeoReference{}, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, grid.GeoReference{}, fmt.Errorf("error fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, grid.GeoReference{}, fmt.Errorf("unexpected status code fetching %s: %d", path, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, grid.GeoReference{}, fmt.Errorf("error opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	g, ref, err := grid.ReadASC(r)
	if err != nil {
		return nil, grid.GeoReference{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, ref, nil
}
