package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("trace", false)

	viper.SetDefault("file_state_dir", "~/.supportbot")

	viper.SetDefault("ratelimit.dir_name", "ratelimit")
	viper.SetDefault("conversation.dir_name", "conversation")
	viper.SetDefault("records.dir_name", "records")
	viper.SetDefault("assets.dir_name", "assets")

	viper.SetDefault("ratelimit.text_cooldown", 2*time.Second)
	viper.SetDefault("ratelimit.photo_cooldown", 5*time.Second)
	viper.SetDefault("ratelimit.max_commands", 5)
	viper.SetDefault("ratelimit.block_duration", 30*time.Second)
	viper.SetDefault("ratelimit.notify_window", 10*time.Second)

	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.rotate_max_bytes", int64(8*1024*1024))

	viper.SetDefault("store.driver", "file") // file|sqlite
	viper.SetDefault("db.dsn", "")
	viper.SetDefault("db.auto_migrate", true)

	viper.SetDefault("assets.backend", "file") // file|s3
	viper.SetDefault("assets.s3_bucket", "")
	viper.SetDefault("assets.s3_prefix", "uploads/")

	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.max_file_bytes", int64(20*1024*1024))
}
