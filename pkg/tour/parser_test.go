package tour

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "name": "office",
  "viewpoints": [
    {
      "id": "v1",
      "position": [0, 1, 0],
      "initialDirection": [0, 0, 1],
      "panoramas": [{"id": "p1", "images": ["a.jpg"]}],
      "hotpoints": [{"hotpointId": "h1", "anchorPosition": [1, 2, 3], "visible": false, "html": "<b>Door</b>"}]
    },
    {
      "id": "v2",
      "panoramas": [{"id": "p1", "images": ["r.jpg", "l.jpg", "u.jpg", "d.jpg", "f.jpg", "b.jpg"],
                     "thumbnails": ["tr.jpg", "tl.jpg", "tu.jpg", "td.jpg", "tf.jpg", "tb.jpg"]}]
    }
  ]
}`

func TestDecodeJSON(t *testing.T) {
	tr, err := Decode([]byte(sampleJSON), ".json")
	require.NoError(t, err)
	require.Len(t, tr.Viewpoints, 2)

	v1 := tr.Viewpoints[0]
	assert.Equal(t, "v1", v1.ID)
	require.NotNil(t, v1.Position)
	assert.Equal(t, [3]float32{0, 1, 0}, *v1.Position)
	require.Len(t, v1.Hotpoints, 1)
	assert.False(t, v1.Hotpoints[0].IsVisible())
	assert.Equal(t, "<b>Door</b>", v1.Hotpoints[0].HTML)

	v2 := tr.Viewpoints[1]
	assert.Nil(t, v2.Position)
	assert.Len(t, v2.Panoramas[0].Thumbnails, 6)
}

func TestDecodeViewpointList(t *testing.T) {
	tr, err := Decode([]byte(`[{"id":"v1","panoramas":[{"id":"p1","images":["a.jpg"]}]}]`), "")
	require.NoError(t, err)
	require.Len(t, tr.Viewpoints, 1)
	assert.Equal(t, "p1", tr.Viewpoints[0].Panoramas[0].ID)
}

func TestDecodeYAML(t *testing.T) {
	doc := `
viewpoints:
  - id: v1
    panoramas:
      - id: p1
        images: [a.jpg]
    hotpoints:
      - hotpointId: h1
        anchorPosition: [1, 0, 0]
        html: door
`
	tr, err := Decode([]byte(doc), ".yaml")
	require.NoError(t, err)
	require.Len(t, tr.Viewpoints, 1)
	assert.True(t, tr.Viewpoints[0].Hotpoints[0].IsVisible())
}

func TestDecodeYAMLList(t *testing.T) {
	doc := `
- id: v1
  panoramas:
    - id: p1
      images: [a.jpg]
`
	tr, err := Decode([]byte(doc), "")
	require.NoError(t, err)
	assert.Equal(t, "v1", tr.Viewpoints[0].ID)
}

func TestDecodeRejectsWrongImageCount(t *testing.T) {
	_, err := Decode([]byte(`[{"id":"v1","panoramas":[{"id":"p1","images":["a.jpg","b.jpg"]}]}]`), ".json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestDecodeRejectsDuplicateViewpoint(t *testing.T) {
	_, err := Decode([]byte(`[{"id":"v1","panoramas":[]},{"id":"v1","panoramas":[]}]`), ".json")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode([]byte("   "), ".json")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	doc := `[{"id":"v1","panoramas":[{"id":"p1","images":["img/a.jpg"]},{"id":"p2","images":["https://example.com/b.jpg"]}]}]`
	file := filepath.Join(dir, "tour.json")
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))

	tr, err := Parse(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "img", "a.jpg"), tr.Viewpoints[0].Panoramas[0].Images[0])
	assert.Equal(t, "https://example.com/b.jpg", tr.Viewpoints[0].Panoramas[1].Images[0])
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.jpg"))
	assert.False(t, IsRemote("a.jpg"))
	assert.False(t, IsRemote("/tmp/a.jpg"))
	assert.False(t, IsRemote(`C:\images\a.jpg`))
	assert.False(t, IsRemote("file:///tmp/a.jpg"))
}

func TestImportSixFaces(t *testing.T) {
	files := []string{"x/Back.jpg", "x/front.jpg", "x/down.png", "x/top.jpg", "x/l.jpg", "x/pano_r.jpg", "x/notes.txt"}
	tr, err := ImportFiles(files)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"x/pano_r.jpg", "x/l.jpg", "x/top.jpg", "x/down.png", "x/front.jpg", "x/Back.jpg"},
		tr.Viewpoints[0].Panoramas[0].Images)
}

func TestImportRejectsOtherCounts(t *testing.T) {
	_, err := ImportFiles([]string{"a.jpg", "b.jpg"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEncodeForKeepsFormat(t *testing.T) {
	tr, err := Decode([]byte(sampleJSON), ".json")
	require.NoError(t, err)

	data, err := EncodeFor(tr, ".yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "hotpointId: h1")
	back, err := Decode(data, ".yml")
	require.NoError(t, err)
	assert.Equal(t, tr, back)

	data, err = EncodeFor(tr, ".json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hotpointId": "h1"`)
}
