package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// LatestPerChat keeps only the newest message row of every chat (Postgres DISTINCT ON).
func LatestPerChat(db *gorm.DB) *gorm.DB {
	return db.Select("DISTINCT ON (chat_id) *").Order("chat_id, created_at DESC")
}
