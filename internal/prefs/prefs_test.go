package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values  Values
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load() (Values, error) { return m.values, m.loadErr }

func (m *memoryStore) Save(v Values) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.values = v
	m.saves++
	return nil
}

func TestInitDefaults(t *testing.T) {
	p := Init(&memoryStore{}, nil)
	assert.Equal(t, Values{Color: DefaultColor, Font: DefaultFont}, p.Values())
	assert.Equal(t, "#2563eb", p.Palette().Primary)
	assert.Equal(t, "Inter", p.Font().Name)
}

func TestInitIgnoresInvalidValues(t *testing.T) {
	p := Init(&memoryStore{values: Values{Color: "magenta", Font: " MONO "}}, nil)
	assert.Equal(t, DefaultColor, p.ColorName())
	assert.Equal(t, "mono", p.FontName())
	assert.True(t, p.Font().Raw)
}

func TestInitLoadFailureFallsBack(t *testing.T) {
	p := Init(&memoryStore{loadErr: errors.New("corrupt")}, nil)
	assert.Equal(t, DefaultColor, p.ColorName())
}

func TestSetPersistsEveryChange(t *testing.T) {
	store := &memoryStore{}
	p := Init(store, nil)

	require.NoError(t, p.SetColor("Purple"))
	require.NoError(t, p.SetFont("serif"))
	assert.Equal(t, Values{Color: "purple", Font: "serif"}, store.values)
	assert.Equal(t, 2, store.saves)

	assert.Error(t, p.SetColor("magenta"))
	assert.Equal(t, "purple", p.ColorName())
	assert.Equal(t, 2, store.saves)
}

func TestCycle(t *testing.T) {
	p := Init(nil, nil)
	for _, want := range []string{"purple", "green", "orange", "blue"} {
		require.NoError(t, p.CycleColor())
		assert.Equal(t, want, p.ColorName())
	}
	require.NoError(t, p.CycleFont())
	assert.Equal(t, "serif", p.FontName())
}

func TestTOMLStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.toml")
	store := NewTOMLStore(path)

	values, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Values{}, values)

	p := Init(store, nil)
	require.NoError(t, p.SetColor("green"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "green")

	reloaded := Init(NewTOMLStore(path), nil)
	assert.Equal(t, "green", reloaded.ColorName())
	assert.Equal(t, DefaultFont, reloaded.FontName())
}
