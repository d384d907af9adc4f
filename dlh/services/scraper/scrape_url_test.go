package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html><head><title>DLH</title><style>body{color:red}</style></head>
<body>
<nav>Home | Courses</nav>
<h1>Admissions</h1>
<p>Classes start   every <b>Monday</b>.</p>
<script>var x = 1;</script>
<ul><li>Web Development</li><li>Data Analysis</li></ul>
<footer>Privacy policy</footer>
</body></html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Admissions\nClasses start every Monday.\nWeb Development\nData Analysis", text)
}

func TestScrapePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), Options{MaxChars: 10})
	text, err := s.ScrapePage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Admissions", text)
}

func TestScrapePageErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			fmt.Fprint(w, "<html><body><script>1</script></body></html>")
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), Options{})
	_, err := s.ScrapePage(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = s.ScrapePage(context.Background(), srv.URL+"/empty")
	assert.ErrorIs(t, err, ErrNoText)
}
