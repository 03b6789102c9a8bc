package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatReply builds a chat-completions response whose message content is body.
func chatReply(t *testing.T, body string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": body}},
		},
	})
	require.NoError(t, err)
	return raw
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	})
}

func TestSuggestFields(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write(chatReply(t, `{
			"description": "A framework silicate.",
			"family": "silicate",
			"formula": "SiO2",
			"crystal_system": "trigonal",
			"color": "colorless",
			"streak": "white",
			"luster": "vitreous",
			"hardness_mohs": 7.0,
			"density_g_cm3": 2.65,
			"major_elements_pct": {"Si": 46.7, "O": 53.3},
			"notes": ""
		}`))
	})

	s, err := client.SuggestFields(context.Background(), "Quartz", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "silicate", s.Family)
	assert.Equal(t, "SiO2", s.Formula)
	require.NotNil(t, s.HardnessMohs)
	assert.Equal(t, 7.0, *s.HardnessMohs)
	assert.Equal(t, 46.7, s.MajorElementsPct["Si"])
}

func TestSuggestFieldsStripsMarkdownFences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "Here you go:\n```json\n{\"family\": \"oxide\", \"formula\": \"Al2O3\"}\n```"))
	})

	s, err := client.SuggestFields(context.Background(), "Corundum", "")
	require.NoError(t, err)
	assert.Equal(t, "oxide", s.Family)
	assert.Nil(t, s.HardnessMohs)
}

func TestSuggestFieldsRequiresName(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"})
	_, err := client.SuggestFields(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestSuggestDisabledWithoutKey(t *testing.T) {
	client := NewClient(Config{})
	assert.False(t, client.Enabled())

	_, err := client.SuggestFields(context.Background(), "Quartz", "")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSuggestUnparseableResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "Sorry, I cannot help with that."))
	})

	_, err := client.SuggestFields(context.Background(), "Quartz", "")
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[0].Content, "German")
		assert.Contains(t, req.Messages[0].Content, "A framework silicate.")
		_, _ = w.Write(chatReply(t, `{"common_name": "Quarz", "description": "Ein Gerüstsilikat.", "notes": ""}`))
	})

	out, err := client.Translate(context.Background(), "German", Translation{
		CommonName:  "Quartz",
		Description: "A framework silicate.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Quarz", out.CommonName)
	assert.Equal(t, "Ein Gerüstsilikat.", out.Description)
}

func TestTranslateKeepsSourceNameWhenMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, `{"description": "Traducido."}`))
	})

	out, err := client.Translate(context.Background(), "Spanish", Translation{CommonName: "Gold"})
	require.NoError(t, err)
	assert.Equal(t, "Gold", out.CommonName)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.SuggestFields(context.Background(), "Quartz", "")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := client.SuggestFields(context.Background(), "Quartz", "")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, "open", client.BreakerState())
}

func TestExtractJSONIgnoresBracesInStrings(t *testing.T) {
	raw := `note {"description": "uses { and } freely", "family": "silicate"} trailing`
	var s Suggestion
	require.NoError(t, json.Unmarshal([]byte(extractJSON(raw)), &s))
	assert.Equal(t, "silicate", s.Family)
}
