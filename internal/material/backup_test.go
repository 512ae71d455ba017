package material

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/rigkit/internal/errkind"
	"github.com/conn-castle/rigkit/internal/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newClock() *clock {
	return &clock{t: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func TestBackup_CopiesBytesAndRecordsChecksum(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "mats/body.mat.yaml", bodyMaterial)
	clk := newClock()
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, clk.now)
	require.NoError(t, err)

	entry, err := b.Backup("body", original, "avatar.model.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "body_backup_20260314_092653.yaml"), entry.BackupPath)
	assert.Equal(t, bodyMaterial, testutil.ReadFile(t, entry.BackupPath))
	assert.Equal(t, Checksum([]byte(bodyMaterial)), entry.Checksum)
	assert.Equal(t, "avatar.model.yaml", entry.ModelPath)

	manifest := testutil.ReadFile(t, b.ManifestPath())
	assert.Contains(t, manifest, `"fbxPath": "avatar.model.yaml"`)
	assert.Contains(t, manifest, `"version": "1.0"`)
}

func TestBackup_SameSecondGetsSuffix(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "body.mat.yaml", bodyMaterial)
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)

	first, err := b.Backup("body", original, "")
	require.NoError(t, err)
	second, err := b.Backup("body", original, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.BackupPath, second.BackupPath)
	assert.Equal(t, "body_backup_20260314_092653_2.yaml", filepath.Base(second.BackupPath))
	assert.Len(t, b.Entries(), 2)
}

func TestBackup_MissingOriginal(t *testing.T) {
	b, err := OpenBackups(t.TempDir(), nil, nil)
	require.NoError(t, err)
	_, err = b.Backup("ghost", filepath.Join(t.TempDir(), "ghost.mat.yaml"), "")
	assert.ErrorIs(t, err, errkind.ErrNotFound)
	assert.Empty(t, b.Entries())
}

func TestOpenBackups_ReloadsManifest(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "body.mat.yaml", bodyMaterial)
	backupDir := filepath.Join(dir, "backups")
	b, err := OpenBackups(backupDir, nil, newClock().now)
	require.NoError(t, err)
	_, err = b.Backup("body", original, "")
	require.NoError(t, err)

	reopened, err := OpenBackups(backupDir, nil, nil)
	require.NoError(t, err)
	entry, ok := reopened.Find("body")
	require.True(t, ok)
	assert.Equal(t, Checksum([]byte(bodyMaterial)), entry.Checksum)
}

func TestOpenBackups_CorruptManifestStartsFresh(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, ManifestFileName, "{ this is not json")
	b, err := OpenBackups(dir, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, b.Entries())
}

func TestRestore_WritesBackupOverOriginal(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "body.mat.yaml", bodyMaterial)
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)
	_, err = b.Backup("body", original, "")
	require.NoError(t, err)

	testutil.WriteFile(t, dir, "body.mat.yaml", "name: body\nshader: lilToon\n")
	require.NoError(t, b.Restore("body"))
	assert.Equal(t, bodyMaterial, testutil.ReadFile(t, original))
}

func TestRestore_UnknownMaterial(t *testing.T) {
	b, err := OpenBackups(t.TempDir(), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Restore("nobody"), errkind.ErrNotFound)
}

func TestRestore_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "body.mat.yaml", bodyMaterial)
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)
	entry, err := b.Backup("body", original, "")
	require.NoError(t, err)

	testutil.WriteFile(t, filepath.Dir(entry.BackupPath), filepath.Base(entry.BackupPath), "tampered")
	testutil.WriteFile(t, dir, "body.mat.yaml", "converted")
	err = b.Restore("body")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.ErrorIs(t, err, errkind.ErrMalformed)
	assert.Equal(t, "converted", testutil.ReadFile(t, original))
}

func TestRestoreAll_ReportsStaleEntry(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)
	var entries []BackupEntry
	for _, name := range []string{"body", "hair", "cloth"} {
		original := testutil.WriteFile(t, dir, name+".mat.yaml", "name: "+name+"\n")
		entry, err := b.Backup(name, original, "")
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	require.NoError(t, os.Remove(entries[1].BackupPath))

	summary := b.RestoreAll()
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Restored)
	assert.False(t, summary.Complete())
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "hair", summary.Failures[0].Entry.MaterialName)
	assert.ErrorIs(t, summary.Failures[0].Err, errkind.ErrNotFound)
}

func TestRestore_OriginalFolderGone(t *testing.T) {
	dir := t.TempDir()
	original := testutil.WriteFile(t, dir, "gone/body.mat.yaml", bodyMaterial)
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)
	_, err = b.Backup("body", original, "")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "gone")))

	assert.ErrorIs(t, b.Restore("body"), errkind.ErrNotFound)
	assert.NoDirExists(t, filepath.Join(dir, "gone"))
}

func TestPrune_DropsOldEntriesAndFiles(t *testing.T) {
	dir := t.TempDir()
	clk := newClock()
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, clk.now)
	require.NoError(t, err)
	original := testutil.WriteFile(t, dir, "body.mat.yaml", bodyMaterial)
	old, err := b.Backup("body", original, "")
	require.NoError(t, err)

	clk.t = clk.t.Add(40 * 24 * time.Hour)
	fresh, err := b.Backup("body", original, "")
	require.NoError(t, err)

	removed, err := b.Prune(DefaultRetention)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old.BackupPath)
	assert.FileExists(t, fresh.BackupPath)
	require.Len(t, b.Entries(), 1)
	assert.Equal(t, fresh.BackupPath, b.Entries()[0].BackupPath)
}

func TestPrune_NothingToDo(t *testing.T) {
	b, err := OpenBackups(t.TempDir(), nil, nil)
	require.NoError(t, err)
	removed, err := b.Prune(DefaultRetention)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPruneStale_DropsEntriesWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBackups(filepath.Join(dir, "backups"), nil, newClock().now)
	require.NoError(t, err)
	a := testutil.WriteFile(t, dir, "a.mat.yaml", "name: a\n")
	c := testutil.WriteFile(t, dir, "c.mat.yaml", "name: c\n")
	ea, err := b.Backup("a", a, "")
	require.NoError(t, err)
	_, err = b.Backup("c", c, "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(ea.BackupPath))

	removed, err := b.PruneStale()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	reopened, err := OpenBackups(b.Dir(), nil, nil)
	require.NoError(t, err)
	_, ok := reopened.Find("a")
	assert.False(t, ok)
	_, ok = reopened.Find("c")
	assert.True(t, ok)
}
