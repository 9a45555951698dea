package bridgeconfigs

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/reusee/bridges/logs"
)

// DotEnv marks that .env files were loaded into the process environment.
// Values already present in the environment are never overridden.
type DotEnv []string

func (Module) DotEnv(
	logger logs.Logger,
) (ret DotEnv) {
	if v := strings.TrimSpace(os.Getenv("BRIDGE_DOTENV")); v != "" {
		switch strings.ToLower(v) {
		case "0", "false", "off", "no":
			return nil
		}
	}
	for _, p := range []string{".env.local", ".env"} {
		if err := godotenv.Load(p); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("load env file", "path", p, "error", err)
			}
			continue
		}
		ret = append(ret, p)
	}
	if len(ret) > 0 {
		logger.Info("env files", "paths", []string(ret))
	}
	return
}
