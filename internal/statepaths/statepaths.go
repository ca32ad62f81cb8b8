package statepaths

import (
	"path/filepath"

	"github.com/quailyquaily/supportbot/internal/pathutil"
	"github.com/spf13/viper"
)

func FileStateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"))
}

func AbuseDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("ratelimit.dir_name"),
		"ratelimit",
	)
}

func ConversationDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("conversation.dir_name"),
		"conversation",
	)
}

func RecordsDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("records.dir_name"),
		"records",
	)
}

func AssetsDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("assets.dir_name"),
		"assets",
	)
}

func AuditLogPath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), "throttle_audit.jsonl")
}

func LocksDir() string {
	return filepath.Join(FileStateDir(), ".fslocks")
}
