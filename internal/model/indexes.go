package model

import (
	"fmt"

	"collab-workspace-be/internal/entity"
)

// PostgresIndexes are the indexes AutoMigrate cannot express. Every statement is idempotent.
var PostgresIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_chats_participants ON chats USING GIN (participants jsonb_path_ops);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_read_by ON messages USING GIN (read_by jsonb_path_ops);`,
	// One standing general chat per workspace.
	fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_workspace_general ON chats (workspace_id) WHERE name = '%s' AND NOT is_direct_message;`, entity.GeneralChatName),
}
