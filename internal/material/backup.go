package material

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"lukechampine.com/blake3"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/fsutil"
)

const (
	// ManifestFileName is the manifest's name inside the backup folder.
	ManifestFileName = "backup_manifest.json"
	// ManifestVersion is the schema version written to new manifests.
	ManifestVersion = "1.0"
	// DefaultRetention is how long Prune keeps backups by default.
	DefaultRetention = 30 * 24 * time.Hour

	backupStampLayout = "20060102_150405"
)

// ErrChecksumMismatch reports a backup whose bytes no longer match the manifest.
var ErrChecksumMismatch = errors.New("backup checksum mismatch")

// BackupEntry records one material backup.
type BackupEntry struct {
	MaterialName string    `json:"materialName"`
	OriginalPath string    `json:"originalPath"`
	BackupPath   string    `json:"backupPath"`
	ModelPath    string    `json:"fbxPath"`
	Timestamp    time.Time `json:"timestamp"`
	Checksum     string    `json:"checksum"`
}

// Manifest is the durable list of backups.
type Manifest struct {
	Entries   []BackupEntry `json:"entries"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   string        `json:"version"`
}

// Backups owns the backup folder and its manifest. The manifest is rewritten
// after every mutation.
type Backups struct {
	dir      string
	path     string
	manifest Manifest
	log      *slog.Logger
	now      func() time.Time
}

// OpenBackups creates dir if needed and loads its manifest. A missing or
// unreadable manifest starts a fresh one; a corrupt manifest is logged and
// replaced on the next write.
func OpenBackups(dir string, log *slog.Logger, now func() time.Time) (*Backups, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errkind.IOf("create backup folder", err)
	}
	b := &Backups{dir: dir, path: filepath.Join(dir, ManifestFileName), log: log, now: now}
	b.load()
	return b, nil
}

func (b *Backups) load() {
	b.manifest = Manifest{Entries: []BackupEntry{}, CreatedAt: b.now(), Version: ManifestVersion}
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Warn("read backup manifest failed, starting fresh", "path", b.path, "error", err)
		}
		return
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		b.log.Warn("backup manifest is corrupt, starting fresh", "path", b.path, "error", err)
		return
	}
	if m.Entries == nil {
		m.Entries = []BackupEntry{}
	}
	if m.Version == "" {
		m.Version = ManifestVersion
	}
	b.manifest = m
	b.log.Debug("loaded backup manifest", "entries", len(m.Entries))
}

func (b *Backups) save() error {
	data, err := json.MarshalIndent(b.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode manifest: %w", errkind.ErrUnexpected, err)
	}
	if err := fsutil.WriteFileAtomic(b.path, append(data, '\n'), 0o644); err != nil {
		return errkind.IOf("write backup manifest", err)
	}
	return nil
}

// Dir is the backup folder.
func (b *Backups) Dir() string { return b.dir }

// ManifestPath is where the manifest lives.
func (b *Backups) ManifestPath() string { return b.path }

// Entries returns a copy of the manifest entries in insertion order.
func (b *Backups) Entries() []BackupEntry {
	return slices.Clone(b.manifest.Entries)
}

// Find returns the first entry recorded for name.
func (b *Backups) Find(name string) (BackupEntry, bool) {
	for _, e := range b.manifest.Entries {
		if e.MaterialName == name {
			return e, true
		}
	}
	return BackupEntry{}, false
}

// Checksum is the hex blake3-256 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Backup copies the asset at originalPath byte for byte into the backup folder
// and records it.
func (b *Backups) Backup(name string, originalPath string, modelPath string) (BackupEntry, error) {
	data, err := os.ReadFile(originalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return BackupEntry{}, fmt.Errorf("%w: material %s at %s", errkind.ErrNotFound, name, originalPath)
		}
		return BackupEntry{}, errkind.IOf("read "+originalPath, err)
	}
	now := b.now()
	target := b.uniquePath(name, filepath.Ext(originalPath), now)
	if err := fsutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return BackupEntry{}, errkind.IOf("write backup", err)
	}
	entry := BackupEntry{
		MaterialName: name,
		OriginalPath: originalPath,
		BackupPath:   target,
		ModelPath:    modelPath,
		Timestamp:    now,
		Checksum:     Checksum(data),
	}
	b.manifest.Entries = append(b.manifest.Entries, entry)
	if err := b.save(); err != nil {
		return entry, err
	}
	b.log.Info("backed up material", "material", name, "backup", target)
	return entry, nil
}

func (b *Backups) uniquePath(name string, ext string, now time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, name)
	base := fmt.Sprintf("%s_backup_%s", safe, now.Format(backupStampLayout))
	candidate := filepath.Join(b.dir, base+ext)
	for i := 2; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(b.dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}

// Restore writes the first backup of name back over its original path after
// verifying the checksum.
func (b *Backups) Restore(name string) error {
	entry, ok := b.Find(name)
	if !ok {
		return fmt.Errorf("%w: no backup for material %s", errkind.ErrNotFound, name)
	}
	return b.restoreEntry(entry)
}

func (b *Backups) restoreEntry(entry BackupEntry) error {
	data, err := os.ReadFile(entry.BackupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: backup of %s missing at %s", errkind.ErrNotFound, entry.MaterialName, entry.BackupPath)
		}
		return errkind.IOf("read backup", err)
	}
	if entry.Checksum != "" && Checksum(data) != entry.Checksum {
		return fmt.Errorf("%w: %w: %s", errkind.ErrMalformed, ErrChecksumMismatch, entry.BackupPath)
	}
	if _, err := os.Stat(filepath.Dir(entry.OriginalPath)); err != nil {
		return fmt.Errorf("%w: original location of %s: %w", errkind.ErrNotFound, entry.MaterialName, err)
	}
	if err := fsutil.WriteFileAtomic(entry.OriginalPath, data, 0o644); err != nil {
		return errkind.IOf("restore "+entry.OriginalPath, err)
	}
	b.log.Info("restored material", "material", entry.MaterialName, "path", entry.OriginalPath)
	return nil
}

// RestoreFailure is one entry RestoreAll could not restore.
type RestoreFailure struct {
	Entry BackupEntry
	Err   error
}

// RestoreSummary reports a RestoreAll pass.
type RestoreSummary struct {
	Total    int
	Restored int
	Failures []RestoreFailure
}

// Complete reports whether every entry was restored.
func (s RestoreSummary) Complete() bool {
	return s.Restored == s.Total
}

// RestoreAll restores every entry in manifest order and never fails as a whole;
// stale or corrupt entries are returned as failures.
func (b *Backups) RestoreAll() RestoreSummary {
	summary := RestoreSummary{Total: len(b.manifest.Entries)}
	b.log.Info("restoring materials", "count", summary.Total)
	for _, e := range b.manifest.Entries {
		if err := b.restoreEntry(e); err != nil {
			b.log.Warn("restore failed", "material", e.MaterialName, "error", err)
			summary.Failures = append(summary.Failures, RestoreFailure{Entry: e, Err: err})
			continue
		}
		summary.Restored++
	}
	b.log.Info("restore finished", "restored", summary.Restored, "total", summary.Total)
	return summary
}

// Prune drops entries older than olderThan and deletes their backup files.
func (b *Backups) Prune(olderThan time.Duration) (int, error) {
	cutoff := b.now().Add(-olderThan)
	return b.remove(func(e BackupEntry) bool {
		return e.Timestamp.Before(cutoff)
	}, true)
}

// PruneStale drops entries whose backup file no longer exists.
func (b *Backups) PruneStale() (int, error) {
	return b.remove(func(e BackupEntry) bool {
		_, err := os.Stat(e.BackupPath)
		return os.IsNotExist(err)
	}, false)
}

func (b *Backups) remove(drop func(BackupEntry) bool, deleteFiles bool) (int, error) {
	kept := make([]BackupEntry, 0, len(b.manifest.Entries))
	removed := 0
	var firstErr error
	for _, e := range b.manifest.Entries {
		if !drop(e) {
			kept = append(kept, e)
			continue
		}
		if deleteFiles {
			if err := os.Remove(e.BackupPath); err != nil && !os.IsNotExist(err) {
				// Keep the entry so the file stays tracked.
				kept = append(kept, e)
				if firstErr == nil {
					firstErr = errkind.IOf("delete backup", err)
				}
				continue
			}
		}
		removed++
	}
	if removed == 0 {
		return 0, firstErr
	}
	b.manifest.Entries = kept
	if err := b.save(); err != nil {
		return removed, err
	}
	b.log.Info("pruned backups", "removed", removed, "remaining", len(kept))
	return removed, firstErr
}
