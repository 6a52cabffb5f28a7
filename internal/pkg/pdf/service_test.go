package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/kupipodariday-backend/internal/config"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", FormatMoney(0))
	assert.Equal(t, "1.05", FormatMoney(105))
	assert.Equal(t, "1999.99", FormatMoney(199999))
	assert.Equal(t, "-0.50", FormatMoney(-50))
}

func TestRenderHTML(t *testing.T) {
	svc := NewService(&config.Config{App: config.AppConfig{Name: "KupiPodariDay"}})

	html, err := svc.RenderHTML(&Document{
		Title: "Birthday",
		Owner: "alice",
		Items: []Item{
			{Name: "Kite", Link: "https://shop.example.com/kite", Price: 1000, Raised: 250},
			{Name: "<script>", Link: "https://shop.example.com/x", Price: 500},
		},
		GeneratedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Birthday</h1>")
	assert.Contains(t, html, "March 1, 2025")
	assert.Contains(t, html, "7.50")
	assert.Contains(t, html, "15.00")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "This wishlist is empty.")
}

func TestRenderHTMLEmpty(t *testing.T) {
	html, err := NewService(nil).RenderHTML(&Document{Title: "Nothing yet", Owner: "bob"})
	require.NoError(t, err)
	assert.Contains(t, html, "This wishlist is empty.")
}
