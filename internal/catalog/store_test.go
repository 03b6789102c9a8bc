package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

func writeMineralFolder(t *testing.T, root, folderName string, records map[string]DiskRecord) {
	t.Helper()
	folder := filepath.Join(root, "minerals", folderName)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	for lang, record := range records {
		raw, err := json.Marshal(record)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(folder, "mineral."+lang+".json"), raw, 0o644))
	}
}

func mohs(v float64) *float64 { return &v }

func TestNewStoreCreatesMineralsDir(t *testing.T) {
	root := t.TempDir()

	store, err := NewStore(root)
	require.NoError(t, err)

	assert.DirExists(t, store.MineralsRoot())
	assert.Empty(t, store.List(i18n.English))
}

func TestReloadLoadsFolders(t *testing.T) {
	root := t.TempDir()
	writeMineralFolder(t, root, "mineral.silicate.0xaaaaaa", map[string]DiskRecord{
		"en": {
			CommonName:       "Quartz",
			Description:      "A framework silicate.",
			Family:           "silicate",
			Formula:          "SiO2",
			HardnessMohs:     mohs(7),
			DensityGCm3:      mohs(2.65),
			CrystalSystem:    "trigonal",
			MajorElementsPct: map[string]float64{"Si": 46.7, "O": 53.3},
			ImageFile:        "specimen.jpg",
		},
		"de": {CommonName: "Quarz", Family: "silicate"},
	})

	store, err := NewStore(root)
	require.NoError(t, err)

	m, err := store.Get("mineral.silicate.0xaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "silicate", m.Family)
	assert.Equal(t, "0xaaaaaa", m.HexID)
	assert.Equal(t, "Quartz", m.Name.Resolve("en"))
	assert.Equal(t, "Quarz", m.Name.Resolve("de"))
	assert.Equal(t, "Quartz", m.Name.Resolve("es"), "missing language falls back to English")

	formula, ok := m.Attribute("formula")
	require.True(t, ok)
	assert.Equal(t, "SiO2", formula.Text)
	require.NotNil(t, m.HardnessMohs)
	assert.Equal(t, 7.0, *m.HardnessMohs)
	assert.Equal(t, "/data/minerals/mineral.silicate.0xaaaaaa/specimen.jpg", m.ImagePath)
}

func TestReloadSkipsInvalidFolders(t *testing.T) {
	root := t.TempDir()
	writeMineralFolder(t, root, "mineral.silicate.0xaaaaaa", map[string]DiskRecord{
		"en": {CommonName: "Quartz", Family: "silicate"},
	})
	// Invalid name and a valid name without metadata: both skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "minerals", "notes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "minerals", "mineral.oxide.0xbbbbbb"), 0o755))

	store, err := NewStore(root)
	require.NoError(t, err)

	assert.Len(t, store.List(i18n.English), 1)
}

func TestLegacyMetadataFileServesEnglish(t *testing.T) {
	root := t.TempDir()
	folder := filepath.Join(root, "minerals", "mineral.oxide.0xcccccc")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	raw, err := json.Marshal(DiskRecord{CommonName: "Corundum", Family: "oxide"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(folder, "mineral.json"), raw, 0o644))

	store, err := NewStore(root)
	require.NoError(t, err)

	m, err := store.Get("mineral.oxide.0xcccccc")
	require.NoError(t, err)
	assert.Equal(t, "Corundum", m.Name.Resolve("en"))
}

func TestListSortedByLanguageName(t *testing.T) {
	root := t.TempDir()
	writeMineralFolder(t, root, "mineral.silicate.0xaaaaaa", map[string]DiskRecord{
		"en": {CommonName: "Quartz", Family: "silicate"},
		"de": {CommonName: "Achat", Family: "silicate"}, // sorts first in German
	})
	writeMineralFolder(t, root, "mineral.oxide.0xbbbbbb", map[string]DiskRecord{
		"en": {CommonName: "Corundum", Family: "oxide"},
	})

	store, err := NewStore(root)
	require.NoError(t, err)

	english := store.List(i18n.English)
	require.Len(t, english, 2)
	assert.Equal(t, "Corundum", english[0].Name.Resolve("en"))

	german := store.List(i18n.German)
	assert.Equal(t, "Achat", german[0].Name.Resolve("de"))
}

func TestGetUnknownSlug(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("mineral.missing.0x999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishCreatesFolderAndReloads(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	m, err := store.Publish(PublishInput{
		Family: "Native Elements",
		Records: map[string]DiskRecord{
			"en": {CommonName: "Gold", Family: "native-elements", Formula: "Au"},
			"de": {CommonName: "Gold", Family: "native-elements"},
		},
		ImageBytes: []byte{0xff, 0xd8, 0xff},
		ImageExt:   "jpg",
	})
	require.NoError(t, err)

	assert.True(t, IsValidFolderName(m.FolderName))
	assert.Equal(t, "native-elements", m.Family)
	assert.FileExists(t, filepath.Join(store.FolderPath(m), "mineral.en.json"))
	assert.FileExists(t, filepath.Join(store.FolderPath(m), "mineral.de.json"))
	assert.FileExists(t, filepath.Join(store.FolderPath(m), "specimen.jpg"))
	assert.Equal(t, "/data/minerals/"+m.FolderName+"/specimen.jpg", m.ImagePath)
}

func TestPublishRequiresEnglishRecord(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Publish(PublishInput{
		Family:  "oxide",
		Records: map[string]DiskRecord{"de": {CommonName: "Korund"}},
	})
	assert.Error(t, err)
}

func TestParseFolderName(t *testing.T) {
	family, hexID, ok := ParseFolderName("mineral.silicate.0xaaaaaa")
	assert.True(t, ok)
	assert.Equal(t, "silicate", family)
	assert.Equal(t, "0xaaaaaa", hexID)

	invalid := []string{
		"mineral.silicate",             // missing id
		"rock.silicate.0xaaaaaa",       // wrong prefix
		"mineral..0xaaaaaa",            // empty family
		"mineral.silicate.aaaaaa",      // missing 0x
		"mineral.silicate.0xzz",        // non-hex digits
		"mineral.silicate.0x1",         // too short
		"mineral.silicate.0xaaaa.junk", // extra segment
	}
	for _, name := range invalid {
		assert.False(t, IsValidFolderName(name), "name %q", name)
	}
}

func TestSlugifyFamily(t *testing.T) {
	assert.Equal(t, "native-elements", SlugifyFamily("Native Elements"))
	assert.Equal(t, "boro-silicates", SlugifyFamily("  Boro/Silicates "))
	assert.Equal(t, "", SlugifyFamily("***"))
}

func TestParseMajorElements(t *testing.T) {
	values, err := ParseMajorElements("Si=46.7\nO: 53.3\n\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Si": 46.7, "O": 53.3}, values)

	_, err = ParseMajorElements("Si")
	assert.Error(t, err)

	_, err = ParseMajorElements("Si=lots")
	assert.Error(t, err)
}

func TestMajorElementsRoundTrip(t *testing.T) {
	text := MajorElementsToText(map[string]float64{"Si": 46.7, "O": 53.3})
	assert.Equal(t, "O=53.30\nSi=46.70", text)

	values, err := ParseMajorElements(text)
	require.NoError(t, err)
	assert.InDelta(t, 46.7, values["Si"], 0.001)
}

func TestExtraAttributesKeepKinds(t *testing.T) {
	root := t.TempDir()
	writeMineralFolder(t, root, "mineral.silicate.0xdddddd", map[string]DiskRecord{
		"en": {
			CommonName: "Feldspar",
			Family:     "silicate",
			Extra: map[string]interface{}{
				"cleavage_angle": 90.0,
				"fluorescent":    true,
				"habit":          "prismatic",
			},
		},
	})

	store, err := NewStore(root)
	require.NoError(t, err)

	m, err := store.Get("mineral.silicate.0xdddddd")
	require.NoError(t, err)
	assert.Equal(t, types.NumberAttribute(90), m.Attributes["cleavage_angle"])
	assert.Equal(t, types.BoolAttribute(true), m.Attributes["fluorescent"])
	assert.Equal(t, types.TextAttribute("prismatic"), m.Attributes["habit"])
}
