package imagecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gopano/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFetcherHTTP(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("image"))
	}))
	defer srv.Close()

	f := DefaultFetcher{Client: srv.Client()}
	data, err := f.Fetch(context.Background(), srv.URL+"/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))
	assert.Equal(t, version.UserAgent(), agent)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.jpg")
	assert.ErrorContains(t, err, "404")
}

func TestDefaultFetcherFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o644))

	data, err := DefaultFetcher{}.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, err = DefaultFetcher{}.Fetch(context.Background(), path+".missing")
	assert.Error(t, err)
}
