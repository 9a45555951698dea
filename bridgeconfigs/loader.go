package bridgeconfigs

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
)

//go:embed schema.cue
var schema string

var Schema = schema

var extraPaths = cmds.Collect[string]("--config", "-config")

func init() {
	cmds.GlobalExecutor.Define("--config-dir", cmds.Func(func(dir string) {
		*extraPaths = append(*extraPaths, filepath.Join(dir, "bridge.cue"))
	}).Desc("add DIR/bridge.cue to the config files"))
}

var filenames = []string{
	"bridge.cue",
	".bridge.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
	_ DotEnv,
) configs.Loader {

	var paths []string
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	// explicit paths shadow discovered ones
	paths = append(paths, *extraPaths...)
	if env := os.Getenv("BRIDGE_CONFIG"); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}

	var dirs []string
	if workingDir, err := os.Getwd(); err == nil {
		dirs = append(dirs, workingDir)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(configDir, "bridges"))
	}
	dirs = append(dirs, "/etc/bridges")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	return configs.NewLoader(paths, schema)
}
