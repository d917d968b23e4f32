package config

import "os"

func IsDebug() bool {
	return os.Getenv("GLIMPSE_DEBUG") == "1"
}
