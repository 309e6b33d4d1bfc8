package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/yarlson/yarlang/build"
	"github.com/yarlson/yarlang/module"
)

// yarlang is the project-level driver: it resolves a yar.toml-rooted module
// graph and runs it through build.Builder's parse -> check -> lower ->
// codegen -> clang pipeline. cmd/yar is the single-file equivalent used for
// quick builds outside of a project.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := initCommand(os.Args[2:]); err != nil {
			logger.Fatal("init failed", zap.Error(err))
		}

		return
	}

	dir, err := os.Getwd()
	if err != nil {
		logger.Fatal("getting working directory", zap.Error(err))
	}

	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	projectRoot, err := module.FindProjectRoot(dir)
	if err != nil {
		logger.Fatal("locating yar.toml", zap.Error(err))
	}

	logger.Info("building project", zap.String("root", projectRoot))

	builder := build.NewBuilder(projectRoot)
	if err := builder.Build(); err != nil {
		logger.Fatal("build failed", zap.Error(err))
	}

	logger.Info("build succeeded")
}
