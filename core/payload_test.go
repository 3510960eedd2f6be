package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

func TestParsePayload(t *testing.T) {
	resp, err := core.NewResponse([]byte(`{"data":{"episodic":"went to the market","character":{"name":"Ada"},"other":1}}`))
	require.NoError(t, err)

	p := core.ParsePayload(resp)
	assert.Equal(t, "went to the market", p.Episodic)
	assert.JSONEq(t, `{"name":"Ada"}`, p.Character)
	assert.False(t, p.IsEmpty())
}

func TestParsePayload_MissingAndNull(t *testing.T) {
	resp, err := core.NewResponse([]byte(`{"data":{"episodic":null}}`))
	require.NoError(t, err)

	p := core.ParsePayload(resp)
	assert.True(t, p.IsEmpty())
	assert.True(t, core.ParsePayload(nil).IsEmpty())
}

func TestNewResponse_InvalidJSON(t *testing.T) {
	_, err := core.NewResponse([]byte("<html>"))
	assert.Error(t, err)
}

func TestResponse_MarshalKeepsBody(t *testing.T) {
	body := `{"data":[1,2],"message":"ok"}`
	resp, err := core.NewResponse([]byte(body))
	require.NoError(t, err)

	out, err := resp.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))
	assert.JSONEq(t, `[1,2]`, string(resp.Data))
	assert.Equal(t, "ok", resp.Get("message").String())
}

func TestConfigValidate(t *testing.T) {
	cfg := core.Config{}
	assert.ErrorIs(t, cfg.Validate(), core.ErrMissingAPIKey)

	cfg = core.Config{APIKey: "k", BaseURL: "http://localhost:3000/"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.NotNil(t, cfg.HTTPClient)
	assert.Equal(t, core.DefaultTimeout, cfg.Timeout)
}

func TestListOptionsParams(t *testing.T) {
	assert.Empty(t, core.ListOptions{}.Params())
	assert.Equal(t, map[string]string{"sort": "desc"}, core.ListOptions{Sort: "desc"}.Params())
}
