package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// flashesAfter replays the response's session cookie against /flashes.
func flashesAfter(t *testing.T, app *fiber.App, prev *http.Response) []string {
	t.Helper()
	req := httptest.NewRequest("GET", "/flashes", nil)
	for _, ck := range prev.Cookies() {
		req.AddCookie(ck)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out []string
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}
