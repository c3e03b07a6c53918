package config

import "os"

func IsDebug() bool {
	return os.Getenv("SMARTCTX_DEBUG") == "1"
}
