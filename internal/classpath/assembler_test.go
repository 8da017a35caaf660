package classpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/lintgrid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeze_Empty(t *testing.T) {
	a := NewAssembler()

	entries, err := a.Freeze()
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.True(t, config.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "is there a race condition?")
	assert.False(t, a.Frozen())
}

func TestFreeze_PreservesRegistrationOrder(t *testing.T) {
	a := NewAssembler()
	coords := []string{
		"io.lintgrid:rules-standard:1.3.1",
		"com.example:extra-rules:1.0.0",
		"io.lintgrid:engine:1.3.1",
		"com.example:extra-rules:1.0.0",
	}
	for _, c := range coords {
		require.NoError(t, a.Register(MustParseEntry(c)))
	}

	entries, err := a.Freeze()
	require.NoError(t, err)
	want := []string{
		"io.lintgrid:rules-standard:1.3.1",
		"com.example:extra-rules:1.0.0",
		"io.lintgrid:engine:1.3.1",
	}
	if diff := cmp.Diff(want, Strings(entries)); diff != "" {
		t.Errorf("frozen entries mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, a.Frozen())
}

func TestRegister_AfterFreeze(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.Register(MustParseEntry("g:a:1")))
	_, err := a.Freeze()
	require.NoError(t, err)

	err = a.Register(MustParseEntry("g:b:1"))
	assert.ErrorIs(t, err, ErrFrozen)
	assert.True(t, config.IsConfigurationError(err))
	assert.Equal(t, 1, a.Len())

	_, err = a.Freeze()
	assert.ErrorIs(t, err, ErrFrozen, "freeze happens exactly once")
}

func TestFreeze_ReturnsCopy(t *testing.T) {
	a := NewAssembler()
	require.NoError(t, a.RegisterAll(MustParseEntry("g:a:1"), MustParseEntry("g:b:1")))
	entries, err := a.Freeze()
	require.NoError(t, err)

	entries[0] = MustParseEntry("x:y:z")
	assert.Equal(t, "g:a:1", a.Entries()[0].String())
}

func TestParseEntry(t *testing.T) {
	testCases := []struct {
		in        string
		expectErr bool
		want      Entry
	}{
		{in: "io.lintgrid:engine:1.3.1", want: Entry{Group: "io.lintgrid", Name: "engine", Version: "1.3.1"}},
		{in: "g:n_x-y:0.1.0-SNAPSHOT", want: Entry{Group: "g", Name: "n_x-y", Version: "0.1.0-SNAPSHOT"}},
		{in: "g:n", expectErr: true},
		{in: "g:n:v:extra", expectErr: true},
		{in: "g::v", expectErr: true},
		{in: `g:"n":v`, expectErr: true},
		{in: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEntry(tc.in)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("single entry", func(t *testing.T) {
		got := Render([]Entry{MustParseEntry("g:a:1")})
		assert.Equal(t, `"\"g:a:1\""`, got)
	})

	t.Run("multiple entries continue across lines", func(t *testing.T) {
		got := Render([]Entry{MustParseEntry("g:a:1"), MustParseEntry("g:b:2"), MustParseEntry("g:c:3")})
		want := `"\"g:a:1\"," +` + "\n" + `"\"g:b:2\"," +` + "\n" + `"\"g:c:3\""`
		assert.Equal(t, want, got)
	})

	t.Run("separator", func(t *testing.T) {
		assert.Equal(t, ",\" +\n\"", Separator)
	})
}
