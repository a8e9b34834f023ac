package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/finlearn/internal/common"
	"github.com/ternarybob/finlearn/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	preference interfaces.PreferenceStorage
	watchlist  interfaces.WatchlistStorage
	activity   interfaces.ActivityStorage
	streak     interfaces.StreakStorage
	cache      interfaces.CacheStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		preference: NewPreferenceStorage(db, logger),
		watchlist:  NewWatchlistStorage(db, logger),
		activity:   NewActivityStorage(db, logger),
		streak:     NewStreakStorage(db, logger),
		cache:      NewCacheStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// PreferenceStorage returns the preference storage interface
func (m *Manager) PreferenceStorage() interfaces.PreferenceStorage {
	return m.preference
}

// WatchlistStorage returns the watchlist storage interface
func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.watchlist
}

// ActivityStorage returns the activity log storage interface
func (m *Manager) ActivityStorage() interfaces.ActivityStorage {
	return m.activity
}

// StreakStorage returns the streak storage interface
func (m *Manager) StreakStorage() interfaces.StreakStorage {
	return m.streak
}

// CacheStorage returns the cache entry storage interface
func (m *Manager) CacheStorage() interfaces.CacheStorage {
	return m.cache
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
