package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-generator/internal/config"
	"github.com/jonathan/cover-letter-generator/internal/llm"
	"github.com/jonathan/cover-letter-generator/internal/observability"
	"github.com/jonathan/cover-letter-generator/internal/types"
)

// fakeLLM answers JSON calls with rankedLinks and content calls with letter.
type fakeLLM struct {
	rankedLinks string
	letter      string
	prompts     []string
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llm.Message, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	return f.letter, nil
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ []llm.Message, _ llm.ModelTier) (string, error) {
	return f.rankedLinks, nil
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeLLM) Close() error { return nil }

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><head><title>Ada</title></head><body><p>Hi</p><a href="/projects">Projects</a></body></html>`)
	})
	mux.HandleFunc("/projects", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><head><title>Projects</title></head><body><p>A compiler</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testApp(t *testing.T, client llm.Client) *app {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return assemble(cfg, client, observability.DiscardLogger())
}

func TestWriteLinks(t *testing.T) {
	srv := newSite(t)
	client := &fakeLLM{rankedLinks: `{"links": [{"type": "projects", "url": "/projects"}]}`}
	a := testApp(t, client)

	var out bytes.Buffer
	require.NoError(t, writeLinks(context.Background(), a.fetcher, a.selector, srv.URL+"/", &out))

	assert.JSONEq(t, `[{"type": "projects", "url": "/projects"}]`, out.String())
}

func TestWriteLinks_FetchFailure(t *testing.T) {
	a := testApp(t, &fakeLLM{})

	var out bytes.Buffer
	err := writeLinks(context.Background(), a.fetcher, a.selector, "http://127.0.0.1:1/", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
	assert.Empty(t, out.String())
}

func TestWriteAggregate(t *testing.T) {
	srv := newSite(t)
	client := &fakeLLM{rankedLinks: `{"links": [{"type": "projects", "url": "/projects"}]}`}
	a := testApp(t, client)

	var out bytes.Buffer
	require.NoError(t, writeAggregate(context.Background(), a.aggregator, srv.URL+"/", false, &out))

	want := "Webpage Title:\nAda\nWebpage Contents:\nHi\nProjects\n\n" +
		"\n\nprojects\nWebpage Title:\nProjects\nWebpage Contents:\nA compiler\n\n\n"
	assert.Equal(t, want, out.String())
}

func TestWriteAggregate_Verbose(t *testing.T) {
	srv := newSite(t)
	client := &fakeLLM{rankedLinks: `{"links": [{"type": "projects", "url": "/projects"}, {"type": "mail", "url": "mailto:ada@ada.dev"}]}`}
	a := testApp(t, client)

	var out bytes.Buffer
	require.NoError(t, writeAggregate(context.Background(), a.aggregator, srv.URL+"/", true, &out))

	assert.Contains(t, out.String(), "Portfolio: "+srv.URL+"/")
	assert.Contains(t, out.String(), "mailto:ada@ada.dev")
	assert.Contains(t, out.String(), "Webpage Contents:\nA compiler")
}

func TestWriteLetter(t *testing.T) {
	srv := newSite(t)
	client := &fakeLLM{
		rankedLinks: `{"links": [{"type": "projects", "url": "/projects"}]}`,
		letter:      "Dear Acme,\nHire me.",
	}
	a := testApp(t, client)

	req := &types.CoverLetterRequest{
		ApplicantName: "Ada",
		PortfolioURL:  srv.URL + "/",
		JobTitle:      "Engineer",
		CompanyName:   "Acme",
		KeySkills:     []string{"Go"},
	}
	req.ApplyDefaults()

	var out bytes.Buffer
	require.NoError(t, writeLetter(context.Background(), a.composer, req, &out))

	assert.Equal(t, "Dear Acme,\nHire me.\n", out.String())
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "A compiler")
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("api-key", "", "")
	cmd.Flags().String("provider", "", "")
	cmd.Flags().String("log-level", "", "")
	return cmd
}

func clearAPIKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "COVER_LETTER_LLM_API_KEY", "COVER_LETTER_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	clearAPIKeys(t)
	t.Chdir(t.TempDir())

	cmd := newFlagCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--provider", "anthropic", "--api-key", "ak", "--log-level", "debug"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "ak", cfg.LLM.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidProvider(t *testing.T) {
	clearAPIKeys(t)
	t.Chdir(t.TempDir())

	cmd := newFlagCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--provider", "cohere"}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	clearAPIKeys(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fetch": {"concurrency": 2}}`), 0644))

	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	cfg, err := loadConfig(newFlagCommand())
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
}

func TestNewApp_RequiresAPIKey(t *testing.T) {
	clearAPIKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	_, err = newApp(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewApp_OpenAI(t *testing.T) {
	clearAPIKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.LLM.APIKey = "sk-test"

	a, err := newApp(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Equal(t, llm.DefaultOpenAIConfig().GetModel(llm.TierAdvanced), a.client.GetModel(llm.TierAdvanced))
	assert.NotNil(t, a.composer)
}

func TestRootCommand_RequiredFlags(t *testing.T) {
	for _, tc := range []struct {
		args []string
		flag string
	}{
		{args: []string{"links"}, flag: `"url"`},
		{args: []string{"aggregate"}, flag: `"url"`},
		{args: []string{"generate", "--url", "https://ada.dev"}, flag: `"company"`},
	} {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetErr(&out)
			rootCmd.SetArgs(tc.args)
			t.Cleanup(func() { rootCmd.SetArgs(nil) })

			err := rootCmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag(s)")
			assert.Contains(t, err.Error(), tc.flag)
		})
	}
}
