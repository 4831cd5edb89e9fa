package search

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fiapo/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	berserkID  = "801513ba-a712-498c-8f57-cae55b38cc92"
	vagabondID = "d1a9fdeb-f713-407f-960c-8326b586e6fd"
)

func searchBody(coverFile string) string {
	return fmt.Sprintf(`{
  "result": "ok",
  "data": [
    {
      "id": %q,
      "type": "manga",
      "attributes": {
        "title": {"en": "Berserk"},
        "altTitles": [{"ja": "ベルセルク"}, {"ja-ro": "Beruseruku"}]
      },
      "relationships": [
        {"id": "5863578c-4a6f-4a1d-9a2e-2e0a4b27b1a5", "type": "author", "attributes": {"name": "Miura Kentarou"}},
        {"id": "5863578c-4a6f-4a1d-9a2e-2e0a4b27b1a5", "type": "artist", "attributes": {"name": "Miura Kentarou"}},
        {"id": "b6c7ce9c-e671-4f26-90b0-e592188e9cd6", "type": "cover_art", "attributes": {"fileName": %q}}
      ]
    },
    {
      "id": %q,
      "type": "manga",
      "attributes": {"title": {"ja-ro": "Vagabond"}, "altTitles": []},
      "relationships": [{"id": "0a0b0c0d-0000-0000-0000-000000000000", "type": "author"}]
    }
  ]
}`, berserkID, coverFile, vagabondID)
}

func jpegCover(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	cover := jpegCover(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/manga", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "desc", q.Get("order[followedCount]"))
		assert.ElementsMatch(t, []string{"author", "artist", "cover_art"}, q["includes[]"])

		switch q.Get("title") {
		case "nothing":
			fmt.Fprint(w, `{"result": "ok", "data": []}`)
		case "broken":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		case "slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, searchBody("cover.jpg"))
		}
	})
	mux.HandleFunc("/covers/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/covers/"+berserkID+"/cover.jpg.512.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(cover)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	srv := newCatalog(t)
	client := NewClient(srv.URL+"/", WithCoverURL(srv.URL))

	results, err := client.Search(context.Background(), "berserk")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Equal(t, berserkID, first.ID.String())
	assert.Equal(t, "Berserk", first.EnglishTitle)
	assert.Equal(t, "Beruseruku", first.RomajiTitle)
	assert.Equal(t, "Miura Kentarou", first.Author)
	assert.Equal(t, "Miura Kentarou", first.Artist)
	assert.Equal(t, srv.URL+"/covers/"+berserkID+"/cover.jpg.512.jpg", first.CoverURL)

	second := results[1]
	assert.Equal(t, "Vagabond", second.EnglishTitle)
	assert.Equal(t, Unknown, second.Author)
	assert.Equal(t, Unknown, second.Artist)
	assert.Empty(t, second.CoverURL)
}

func TestSearchErrors(t *testing.T) {
	srv := newCatalog(t)

	t.Run("no results", func(t *testing.T) {
		_, err := NewClient(srv.URL).Search(context.Background(), "nothing")
		require.Error(t, err)
		assert.Equal(t, errors.SearchNoResults, errors.KindOf(err))
	})

	t.Run("server error", func(t *testing.T) {
		_, err := NewClient(srv.URL).Search(context.Background(), "broken")
		require.Error(t, err)
		assert.Equal(t, errors.SearchFailed, errors.KindOf(err))
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("timeout", func(t *testing.T) {
		client := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
		start := time.Now()
		_, err := client.Search(context.Background(), "slow")
		require.Error(t, err)
		assert.True(t, errors.IsSearchTimeout(err))
		assert.Less(t, time.Since(start), time.Second)

		var searchErr *errors.SearchError
		require.True(t, errors.As(err, &searchErr))
		assert.Equal(t, "slow", searchErr.Query())
	})
}

func TestSearchWithCovers(t *testing.T) {
	srv := newCatalog(t)
	client := NewClient(srv.URL, WithCoverURL(srv.URL))

	hits, err := client.SearchWithCovers(context.Background(), "berserk", 64)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	require.NotNil(t, hits[0].Cover)
	bounds := hits[0].Cover.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 64)
	assert.Equal(t, 64, bounds.Dy())
	assert.Nil(t, hits[1].Cover, "missing cover does not fail the search")
}

func TestFetchCoverNotFound(t *testing.T) {
	srv := newCatalog(t)
	client := NewClient(srv.URL)

	_, err := client.FetchCover(context.Background(), srv.URL+"/covers/missing.jpg", 64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
