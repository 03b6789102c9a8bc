package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/pkg/types"
)

// ErrNotFound is returned when a slug resolves to no published mineral.
var ErrNotFound = errors.New("catalog: mineral not found")

const mineralsDirName = "minerals"

// Store is the folder-backed mineral store with an in-memory snapshot.
// Reads serve from the snapshot; Reload rebuilds it from disk.
type Store struct {
	dataRoot string

	mu      sync.RWMutex
	bySlug  map[string]*types.Mineral
	ordered []*types.Mineral
}

// NewStore creates the store rooted at dataRoot, ensuring the minerals
// directory exists, and performs the initial load.
func NewStore(dataRoot string) (*Store, error) {
	s := &Store{dataRoot: dataRoot, bySlug: make(map[string]*types.Mineral)}
	if err := os.MkdirAll(s.MineralsRoot(), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: failed to create %s: %w", s.MineralsRoot(), err)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// MineralsRoot returns the directory containing the per-mineral folders.
func (s *Store) MineralsRoot() string {
	return filepath.Join(s.dataRoot, mineralsDirName)
}

// FolderPath returns the on-disk folder for a mineral.
func (s *Store) FolderPath(m *types.Mineral) string {
	return filepath.Join(s.MineralsRoot(), m.FolderName)
}

// Reload rescans the minerals directory and swaps in a fresh snapshot.
// Folders with invalid names or without an English metadata file are
// skipped, not fatal.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.MineralsRoot())
	if err != nil {
		return fmt.Errorf("catalog: failed to read %s: %w", s.MineralsRoot(), err)
	}

	bySlug := make(map[string]*types.Mineral)
	var ordered []*types.Mineral

	for _, entry := range entries {
		if !entry.IsDir() || !IsValidFolderName(entry.Name()) {
			continue
		}
		mineral, err := s.loadFolder(entry.Name())
		if err != nil {
			log.Warn().Err(err).Str("folder", entry.Name()).Msg("skipping mineral folder")
			continue
		}
		bySlug[mineral.Slug] = mineral
		ordered = append(ordered, mineral)
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Name.Resolve(types.EnglishLang) < ordered[j].Name.Resolve(types.EnglishLang)
	})

	s.mu.Lock()
	s.bySlug = bySlug
	s.ordered = ordered
	s.mu.Unlock()

	log.Info().Int("count", len(ordered)).Msg("catalog loaded")
	return nil
}

// loadFolder reads every language's metadata file for one mineral folder.
// The English record is authoritative for technical fields; other
// languages contribute localized text only.
func (s *Store) loadFolder(folderName string) (*types.Mineral, error) {
	family, hexID, _ := ParseFolderName(folderName)
	folder := filepath.Join(s.MineralsRoot(), folderName)

	english, err := s.readRecord(folder, types.EnglishLang)
	if err != nil {
		return nil, err
	}

	mineral := &types.Mineral{
		Slug:             folderName,
		FolderName:       folderName,
		Family:           family,
		HexID:            hexID,
		Name:             types.LocalizedText{types.EnglishLang: english.CommonName},
		Description:      types.LocalizedText{types.EnglishLang: english.Description},
		Notes:            types.LocalizedText{types.EnglishLang: english.Notes},
		Attributes:       english.attributes(),
		HardnessMohs:     english.HardnessMohs,
		DensityGCm3:      english.DensityGCm3,
		MajorElementsPct: english.MajorElementsPct,
	}
	if english.ImageFile != "" {
		mineral.ImagePath = fmt.Sprintf("/data/minerals/%s/%s", folderName, english.ImageFile)
	}

	for _, lang := range i18n.All() {
		if lang == i18n.English {
			continue
		}
		record, err := s.readRecord(folder, lang.Code())
		if err != nil {
			// Absence of other languages is tolerated.
			continue
		}
		if record.CommonName != "" {
			mineral.Name[lang.Code()] = record.CommonName
		}
		if record.Description != "" {
			mineral.Description[lang.Code()] = record.Description
		}
		if record.Notes != "" {
			mineral.Notes[lang.Code()] = record.Notes
		}
	}

	return mineral, nil
}

// readRecord reads mineral.<lang>.json, falling back to the legacy
// mineral.json for English.
func (s *Store) readRecord(folder, lang string) (*DiskRecord, error) {
	path := filepath.Join(folder, fmt.Sprintf("mineral.%s.json", lang))
	raw, err := os.ReadFile(path)
	if err != nil && lang == types.EnglishLang {
		legacy := filepath.Join(folder, "mineral.json")
		raw, err = os.ReadFile(legacy)
		path = legacy
	}
	if err != nil {
		return nil, err
	}

	var record DiskRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse %s: %w", path, err)
	}
	if record.CommonName == "" {
		return nil, fmt.Errorf("catalog: %s has no common_name", path)
	}
	return &record, nil
}

// List returns the catalog snapshot sorted by name in the given language.
func (s *Store) List(lang i18n.Language) []*types.Mineral {
	s.mu.RLock()
	minerals := make([]*types.Mineral, len(s.ordered))
	copy(minerals, s.ordered)
	s.mu.RUnlock()

	if lang != i18n.English {
		sort.SliceStable(minerals, func(i, j int) bool {
			return minerals[i].Name.Resolve(lang.Code()) < minerals[j].Name.Resolve(lang.Code())
		})
	}
	return minerals
}

// Get returns the mineral for slug or ErrNotFound.
func (s *Store) Get(slug string) (*types.Mineral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.bySlug[slug]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

// PublishInput carries one mineral's metadata for publication. Records is
// keyed by language code and must contain an English entry; ImageBytes and
// ImageExt are optional.
type PublishInput struct {
	Family     string
	Records    map[string]DiskRecord
	ImageBytes []byte
	ImageExt   string
}

// Publish creates a new mineral folder with a unique hex id, writes every
// language's metadata file (English first) and the optional image, then
// reloads the snapshot.
func (s *Store) Publish(input PublishInput) (*types.Mineral, error) {
	english, ok := input.Records[types.EnglishLang]
	if !ok || english.CommonName == "" {
		return nil, errors.New("catalog: publish requires an English record with a common name")
	}

	familySlug := SlugifyFamily(input.Family)
	if familySlug == "" {
		return nil, fmt.Errorf("catalog: family %q slugifies to nothing", input.Family)
	}

	folderName, err := s.uniqueFolderName(familySlug)
	if err != nil {
		return nil, err
	}
	folder := filepath.Join(s.MineralsRoot(), folderName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: failed to create %s: %w", folder, err)
	}

	if len(input.ImageBytes) > 0 {
		imageName := "specimen." + strings.TrimPrefix(input.ImageExt, ".")
		if err := os.WriteFile(filepath.Join(folder, imageName), input.ImageBytes, 0o644); err != nil {
			return nil, fmt.Errorf("catalog: failed to write image: %w", err)
		}
		for lang, record := range input.Records {
			record.ImageFile = imageName
			input.Records[lang] = record
		}
	}

	if err := s.writeRecord(folder, types.EnglishLang, input.Records[types.EnglishLang]); err != nil {
		return nil, err
	}
	for lang, record := range input.Records {
		if lang == types.EnglishLang {
			continue
		}
		if err := s.writeRecord(folder, lang, record); err != nil {
			return nil, err
		}
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s.Get(folderName)
}

func (s *Store) writeRecord(folder, lang string, record DiskRecord) error {
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: failed to encode %s record: %w", lang, err)
	}
	path := filepath.Join(folder, fmt.Sprintf("mineral.%s.json", lang))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("catalog: failed to write %s: %w", path, err)
	}
	return nil
}

// uniqueFolderName picks a crypto-random hex id that does not collide with
// an existing folder.
func (s *Store) uniqueFolderName(familySlug string) (string, error) {
	for attempt := 0; attempt < 16; attempt++ {
		id, err := randomHex(3)
		if err != nil {
			return "", err
		}
		name := fmt.Sprintf("mineral.%s.0x%s", familySlug, id)
		if _, err := os.Stat(filepath.Join(s.MineralsRoot(), name)); os.IsNotExist(err) {
			return name, nil
		}
	}
	return "", errors.New("catalog: could not find a free folder name")
}

func randomHex(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("catalog: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsValidFolderName reports whether name has the canonical
// mineral.<family>.0x<hexid> shape with at least three hex digits.
func IsValidFolderName(name string) bool {
	_, _, ok := ParseFolderName(name)
	return ok
}

// ParseFolderName splits a mineral folder name into its family tag and hex
// id. ok is false for any malformed name.
func ParseFolderName(name string) (family, hexID string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] != "mineral" {
		return "", "", false
	}
	family = parts[1]
	id := parts[2]
	if family == "" || !strings.HasPrefix(id, "0x") || len(id) < 5 {
		return "", "", false
	}
	for _, c := range id[2:] {
		if !isHexDigit(c) {
			return "", "", false
		}
	}
	return family, id, true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// SlugifyFamily lowercases a family label and collapses anything that is
// not alphanumeric into single hyphens, producing a folder-safe tag.
func SlugifyFamily(value string) string {
	var b strings.Builder
	lastHyphen := true
	for _, c := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteRune(c)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
