package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/mrfvalidator/extract"
	"github.com/reoring/mrfvalidator/profile"
)

func TestBuiltin(t *testing.T) {
	set := profile.Builtin()
	assert.Equal(t, []string{"in-network-rates", "allowed-amounts", "table-of-contents"}, set.Kinds())

	p, err := set.Lookup(profile.KindInNetworkRates)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"additionalInfo.json", "negotiatedType.json", "providerGroups.json",
		"providerReferences.json", "lastUpdated.json",
	}, p.Files())
	assert.Equal(t, "in_network.[].negotiated_rates.[].negotiated_prices.[].additional_information", p.Entries[0].Pattern.String())

	toc, err := set.Lookup(profile.KindTableOfContents)
	require.NoError(t, err)
	assert.Equal(t, "reporting_structure.[].in_network_files", toc.Entries[1].Pattern.String())

	_, err = set.Lookup("provider-reference")
	assert.ErrorIs(t, err, profile.ErrUnknownProfile)
}

func TestLoad(t *testing.T) {
	src := `
in-network-rates:
  - file: groups.json
    path: in_network.[].negotiated_rates.[].provider_groups
    limit: 10
custom:
  - file: a.json
    path: a.[]
  - file: a.json
    path: b
`
	set, err := profile.Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"in-network-rates", "custom"}, set.Kinds())

	custom, err := set.Lookup("custom")
	require.NoError(t, err)
	require.Len(t, custom.Entries, 2)
	assert.True(t, custom.Entries[0].Pattern.TargetsElements())
	assert.Equal(t, []string{"a.json"}, custom.Files())

	merged := profile.Builtin().Merge(set)
	assert.Equal(t, []string{"in-network-rates", "allowed-amounts", "table-of-contents", "custom"}, merged.Kinds())
	inr, err := merged.Lookup(profile.KindInNetworkRates)
	require.NoError(t, err)
	require.Len(t, inr.Entries, 1)
	assert.Equal(t, 10, inr.Entries[0].Limit)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"not a mapping":  "- a\n- b\n",
		"not a list":     "kind: {file: a.json}\n",
		"unknown field":  "kind:\n  - file: a.json\n    path: a\n    pathh: b\n",
		"missing file":   "kind:\n  - path: a\n",
		"bad pattern":    "kind:\n  - file: a.json\n    path: a..b\n",
		"negative limit": "kind:\n  - file: a.json\n    path: a\n    limit: -1\n",
		"bad yaml":       "kind: [\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := profile.Load(strings.NewReader(src))
			assert.ErrorIs(t, err, profile.ErrInvalidProfile)
		})
	}

	_, err := profile.Load(strings.NewReader("a:\n  - file: x\n    path: y\na:\n  - file: z\n    path: w\n"))
	var dup *profile.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "a", dup.Key)
	assert.Equal(t, 4, dup.Line)
	assert.Equal(t, 1, dup.FirstLine)
}

func TestLoadFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	set, err := profile.LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, set.Kinds())
}

func TestBindings(t *testing.T) {
	p, err := profile.Builtin().Lookup(profile.KindTableOfContents)
	require.NoError(t, err)

	set, err := extract.OpenFileSinks(t.TempDir(), p.Files(), extract.DefaultWriterOptions)
	require.NoError(t, err)
	defer set.Close()

	bs, err := p.Bindings(set)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "allowedAmountFiles.json", bs[0].Name)

	_, err = p.Bindings(&extract.SinkSet{})
	assert.ErrorIs(t, err, extract.ErrUndefinedSink)
}
