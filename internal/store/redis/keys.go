package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark keys
	KeyPrefixBookmark = "shelf:bookmark:"
	// KeyAllBookmarks is the key for the set of all bookmark IDs
	KeyAllBookmarks = "shelf:bookmarks:all"
	// KeySettings holds the settings singleton
	KeySettings = "shelf:settings"
	// KeyPrefixBackup is the prefix for backup snapshots
	KeyPrefixBackup = "shelf:backup:"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// AllBookmarksKey returns the Redis key for the set of all bookmarks
func AllBookmarksKey() string {
	return KeyAllBookmarks
}

// SettingsKey returns the Redis key for the settings
func SettingsKey() string {
	return KeySettings
}

// BackupKey returns the Redis key for a named backup snapshot
func BackupKey(name string) string {
	return KeyPrefixBackup + name
}
