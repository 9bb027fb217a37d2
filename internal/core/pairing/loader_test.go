package pairing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairList(t *testing.T) {
	pairs, err := ParsePairList(strings.NewReader("# header\nTomato,Basil\n\n  Garlic,Onion  \n#Mint,Lime\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomato,Basil", "Garlic,Onion"}, pairs)
}

func TestParseProfiles(t *testing.T) {
	profiles, err := ParseProfiles(strings.NewReader(`[
		{"name":"Basil","category":"herb","subcategory":"leafy","flavor":{"sweet":2,"bitter":2}}
	]`))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "herb", profiles[0].Category)
	assert.Equal(t, 2.0, profiles[0].Flavor.Sweet)

	_, err = ParseProfiles(strings.NewReader(`{"name":`))
	assert.Error(t, err)
}

func TestEmbeddedSource(t *testing.T) {
	ds, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ds.Base)
	assert.NotEmpty(t, ds.Experimental)
	assert.NotEmpty(t, ds.Profiles)

	p := NewProvider(ds)
	g := p.Graph(false)
	for _, name := range g.AllIngredients() {
		_, ok := p.Profiles().Lookup(name)
		assert.True(t, ok, "missing profile for %s", name)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.txt")
	require.NoError(t, os.WriteFile(base, []byte("A,B\nB,C\n"), 0o644))

	ds, err := FileSource{BasePath: base}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A,B", "B,C"}, ds.Base)
	assert.Empty(t, ds.Experimental)
	assert.Empty(t, ds.Profiles)

	_, err = FileSource{BasePath: filepath.Join(dir, "missing.txt")}.Load(context.Background())
	assert.Error(t, err)
}

func TestRemoteSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/base.txt":
			_, _ = w.Write([]byte("Tomato,Basil\n"))
		case "/extra.txt":
			_, _ = w.Write([]byte("Basil,Mint\n"))
		case "/profiles.json":
			_, _ = w.Write([]byte(`[{"name":"Mint","category":"herb","subcategory":"leafy"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewRemoteSource(config.DataConfig{
		BasePairs:         srv.URL + "/base.txt",
		ExperimentalPairs: srv.URL + "/extra.txt",
		Profiles:          srv.URL + "/profiles.json",
		RemoteTimeout:     time.Second,
	})

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomato,Basil"}, ds.Base)
	assert.Equal(t, []string{"Basil,Mint"}, ds.Experimental)
	require.Len(t, ds.Profiles, 1)
	assert.Equal(t, "Mint", ds.Profiles[0].Name)
}

func TestRemoteSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewRemoteSource(config.DataConfig{
		BasePairs:     srv.URL + "/base.txt",
		RemoteTimeout: time.Second,
	})

	_, err := LoadProvider(context.Background(), src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDataUnavailable))
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.DataConfig{Source: config.SourceEmbedded})
	require.NoError(t, err)
	assert.IsType(t, EmbeddedSource{}, src)

	src, err = NewSource(config.DataConfig{Source: config.SourceFile, BasePairs: "x"})
	require.NoError(t, err)
	assert.IsType(t, FileSource{}, src)

	src, err = NewSource(config.DataConfig{Source: config.SourceRemote, BasePairs: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &RemoteSource{}, src)

	_, err = NewSource(config.DataConfig{Source: "ftp"})
	assert.Error(t, err)
}
