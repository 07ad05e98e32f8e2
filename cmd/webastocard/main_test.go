package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/config"
	"github.com/jask/webastocard/internal/hass"
	"github.com/jask/webastocard/internal/heater"
)

type staticStore map[string]string

func (s staticStore) FetchToken(baseURL string) (string, error) {
	if t, ok := s[baseURL]; ok {
		return t, nil
	}
	return "", errors.New("not found")
}

func TestResolveTokenOrder(t *testing.T) {
	cfg := config.Config{Hass: config.HassConfig{URL: "http://ha:8123", TokenEnv: "WEBASTOCARD_TEST_TOKEN", Token: "from-config"}}
	store := staticStore{"http://ha:8123": "from-store"}

	t.Setenv("WEBASTOCARD_TEST_TOKEN", "from-env")
	require.Equal(t, "from-env", resolveToken(cfg, store))

	t.Setenv("WEBASTOCARD_TEST_TOKEN", "")
	require.Equal(t, "from-store", resolveToken(cfg, store))
	require.Equal(t, "from-config", resolveToken(cfg, staticStore{}))
	require.Equal(t, "from-config", resolveToken(cfg, nil))
}

func TestParseValue(t *testing.T) {
	t.Parallel()
	v, err := parseValue(" 200 ")
	require.NoError(t, err)
	require.Equal(t, 200.0, v)
	v, err = parseValue("0.5")
	require.NoError(t, err)
	require.Equal(t, 0.5, v)
	_, err = parseValue("hot")
	require.Error(t, err)
}

func TestHasReading(t *testing.T) {
	t.Parallel()
	require.False(t, hasReading(hass.Catalog{}))
	require.False(t, hasReading(hass.Catalog{
		"sensor.a": {EntityID: "sensor.a", State: hass.StateUnknown},
		"sensor.b": {EntityID: "sensor.b", State: hass.StateUnavailable},
	}))
	require.True(t, hasReading(hass.Catalog{"sensor.a": {EntityID: "sensor.a", State: "12"}}))
}

func TestNewLiveHost(t *testing.T) {
	t.Parallel()
	cfg := config.Config{
		Host:   config.HostConfig{Mode: config.ModeHeater},
		Heater: config.HeaterConfig{Address: "heater.local"},
	}
	h, err := newLiveHost(cfg, "", zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &heater.Bridge{}, h)

	cfg.Host.Mode = config.ModeHass
	cfg.Hass.URL = "http://ha:8123"
	_, err = newLiveHost(cfg, "", zerolog.Nop())
	require.ErrorIs(t, err, errNoToken)

	h, err = newLiveHost(cfg, "tok", zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &hass.Session{}, h)
}

func TestCardsCommand(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"cards"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), card.CardType)
	require.Contains(t, out.String(), card.EditorType)
}

func TestConfigSampleCommand(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "sample"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "[card]")
	require.Contains(t, out.String(), `entity_prefix = "webasto"`)
}

func TestPrintMapping(t *testing.T) {
	t.Parallel()
	catalog := hass.Catalog{
		"sensor.webasto_temperatura_vykhlopy": {EntityID: "sensor.webasto_temperatura_vykhlopy", State: "1"},
	}
	m := card.Resolve(card.DefaultConfig(), catalog)

	var out bytes.Buffer
	require.NoError(t, printMapping(&out, m, catalog))
	text := out.String()
	require.Contains(t, text, "sensor_temperatura_vykhlopa")
	require.Contains(t, text, "did you mean sensor.webasto_temperatura_vykhlopy?")
	require.Contains(t, text, "0 of ")
}

type fakeREST struct {
	mu    sync.Mutex
	posts []map[string]any
	paths []string
}

func (f *fakeREST) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/states", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, `{"message":"Invalid authentication"}`, http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]hass.Entity{
			{EntityID: card.DefaultEntityID(card.KindButton, "garage", card.ButtonToggleBurn), State: hass.StateUnknown},
			{EntityID: card.DefaultEntityID(card.KindNumber, "garage", card.NumberTargetTemp), State: "200",
				Attributes: map[string]any{"min": 150, "max": 250, "step": 1}},
		})
	})
	mux.HandleFunc("POST /api/services/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.posts = append(f.posts, body)
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()
		_, _ = w.Write([]byte("[]"))
	})
	return mux
}

func writeConfig(t *testing.T, url string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[hass]",
		`url = "` + url + `"`,
		`token_env = "WEBASTOCARD_TEST_TOKEN"`,
		"[card]",
		`entity_prefix = "garage"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("WEBASTOCARD_CONFIG", path)
	t.Setenv("WEBASTOCARD_TEST_TOKEN", "tok")
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPressCommandAgainstHomeAssistant(t *testing.T) {
	fake := &fakeREST{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	writeConfig(t, srv.URL)

	out, err := runRoot(t, "press", card.ButtonToggleBurn)
	require.NoError(t, err)
	require.Contains(t, out, "button.press")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Equal(t, []string{"/api/services/button/press"}, fake.paths)
	require.Equal(t, "button.garage_"+card.ButtonToggleBurn, fake.posts[0]["entity_id"])
}

func TestPressCommandUnknownSlug(t *testing.T) {
	fake := &fakeREST{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	writeConfig(t, srv.URL)

	_, err := runRoot(t, "press", "launch")
	require.ErrorIs(t, err, card.ErrUnknownSlug)
	require.Contains(t, err.Error(), card.ButtonToggleBurn)
	require.Empty(t, fake.paths)
}

func TestSetCommandChecksBounds(t *testing.T) {
	fake := &fakeREST{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	writeConfig(t, srv.URL)

	_, err := runRoot(t, "set", card.NumberTargetTemp, "300")
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside")

	out, err := runRoot(t, "set", card.NumberTargetTemp, "210")
	require.NoError(t, err)
	require.Contains(t, out, "number.set_value")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Equal(t, []string{"/api/services/number/set_value"}, fake.paths)
	require.Equal(t, 210.0, fake.posts[0]["value"])
}

func TestResolveCommand(t *testing.T) {
	fake := &fakeREST{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	writeConfig(t, srv.URL)

	out, err := runRoot(t, "resolve")
	require.NoError(t, err)
	require.Contains(t, out, "button_"+card.ButtonToggleBurn)
	require.Contains(t, out, "2 of ")
}

func TestModeFlagValidation(t *testing.T) {
	writeConfig(t, "http://127.0.0.1:1")
	_, err := runRoot(t, "--mode", "zigbee", "resolve")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--mode")
}
