package main

import (
	"os"

	"go.uber.org/zap"
)

var logger *zap.Logger

func main() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer l.Sync() //nolint:errcheck

	logger = l

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "run":
		handleRun(os.Args[2:])
	case "check":
		handleCheck(os.Args[2:])
	default:
		logger.Error("unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	logger.Info("YarLang Compiler v0.1.0")
	logger.Info("usage",
		zap.String("build", "yar build <file>    Compile YarLang source to executable"),
		zap.String("run", "yar run <file>      Compile and run YarLang source"),
		zap.String("check", "yar check <file>    Type-check without compiling"),
	)
}
