package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/errors"
)

// completionServer fakes the chat completions endpoint, returning the given
// message content for every request.
func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if status != http.StatusOK {
			http.Error(w, "upstream failure", status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestOracle(t *testing.T, baseURL string) *OpenAIOracle {
	t.Helper()
	o, err := NewOpenAIOracle(Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return o
}

func TestScore(t *testing.T) {
	verdict := `{
		"overall_score": 82.5,
		"category_scores": {"financial": 80, "technical": 85},
		"risk_level": "low",
		"recommendations": ["verify insurance certificate"],
		"summary": "Solid vendor."
	}`

	t.Run("valid verdict", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, verdict)
		defer srv.Close()

		o := newTestOracle(t, srv.URL+"/v1")
		a, err := o.Score(context.Background(), KindVendorAnalysis, map[string]string{"name": "Acme"})
		require.NoError(t, err)

		assert.InDelta(t, 82.5, a.OverallScore, 0.001)
		assert.Equal(t, "low", a.RiskLevel)
		assert.Len(t, a.Recommendations, 1)
	})

	t.Run("fenced verdict is accepted", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "```json\n"+verdict+"\n```")
		defer srv.Close()

		o := newTestOracle(t, srv.URL+"/v1")
		a, err := o.Score(context.Background(), KindBidAnalysis, map[string]string{"title": "Bid"})
		require.NoError(t, err)
		assert.InDelta(t, 82.5, a.OverallScore, 0.001)
	})

	t.Run("unknown kind", func(t *testing.T) {
		o := newTestOracle(t, "http://127.0.0.1:1/v1")
		_, err := o.Score(context.Background(), Kind("sentiment"), nil)
		require.Error(t, err)
		assert.False(t, errors.IsType(err, errors.ErrorTypeOracleUnavailable))
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := completionServer(t, http.StatusInternalServerError, "")
		defer srv.Close()

		o := newTestOracle(t, srv.URL+"/v1")
		_, err := o.Score(context.Background(), KindComplianceCheck, nil)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeOracleUnavailable))
	})

	t.Run("malformed verdict", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "definitely not JSON")
		defer srv.Close()

		o := newTestOracle(t, srv.URL+"/v1")
		_, err := o.Score(context.Background(), KindVendorAnalysis, nil)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeOracleUnavailable))
	})
}

func TestParseAssessment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "score above range",
			content: `{"overall_score": 105, "risk_level": "low"}`,
			wantErr: "out of range",
		},
		{
			name:    "negative category score",
			content: `{"overall_score": 50, "category_scores": {"financial": -1}, "risk_level": "low"}`,
			wantErr: "out of range",
		},
		{
			name:    "bogus risk level",
			content: `{"overall_score": 50, "risk_level": "catastrophic"}`,
			wantErr: "unknown risk level",
		},
		{
			name:    "valid minimal",
			content: `{"overall_score": 50, "risk_level": "medium"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAssessment(tt.content)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "medium", a.RiskLevel)
		})
	}
}
