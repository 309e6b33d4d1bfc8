package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yarlson/yarlang/checker"
	"github.com/yarlson/yarlang/codegen"
	"github.com/yarlson/yarlang/lexer"
	"github.com/yarlson/yarlang/mir"
	"github.com/yarlson/yarlang/parser"
)

func handleBuild(args []string) {
	if len(args) < 1 {
		logger.Error("no input file specified")
		os.Exit(1)
	}

	inputFile := args[0]
	outputFile := strings.TrimSuffix(inputFile, filepath.Ext(inputFile))

	source, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Error("reading file", zap.String("file", inputFile), zap.Error(err))
		os.Exit(1)
	}

	l := lexer.New(string(source))
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) > 0 {
		var parseErr error
		for _, e := range p.Errors() {
			parseErr = multierr.Append(parseErr, errors.New(e))
		}

		logger.Error("parser errors", zap.Error(parseErr))
		os.Exit(1)
	}

	c := checker.NewChecker()
	if err := c.CheckFile(file); err != nil {
		logger.Error("type error", zap.Error(err))
		os.Exit(1)
	}

	lower := mir.NewLowerer()
	mirMod := lower.LowerFile(file)

	cg := codegen.NewCodegen()
	llvmMod := cg.GenModule(mirMod)

	llFile := outputFile + ".ll"
	if err := os.WriteFile(llFile, []byte(llvmMod.String()), 0644); err != nil {
		logger.Error("writing LLVM IR", zap.String("file", llFile), zap.Error(err))
		os.Exit(1)
	}

	runtimePath := "runtime/runtime.c"

	cmd := exec.Command("clang", "-O2", llFile, runtimePath, "-o", outputFile)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Error("clang invocation failed", zap.Error(err), zap.ByteString("output", output))
		os.Exit(1)
	}

	logger.Info("built", zap.String("output", outputFile))
}

func handleRun(args []string) {
	if len(args) < 1 {
		logger.Error("no input file specified")
		os.Exit(1)
	}

	handleBuild(args)

	inputFile := args[0]
	execFile := strings.TrimSuffix(inputFile, filepath.Ext(inputFile))

	cmd := exec.Command("./" + execFile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		logger.Error("running executable", zap.String("executable", execFile), zap.Error(err))
		os.Exit(1)
	}
}

func handleCheck(args []string) {
	if len(args) < 1 {
		logger.Error("no input file specified")
		os.Exit(1)
	}

	inputFile := args[0]

	source, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Error("reading file", zap.String("file", inputFile), zap.Error(err))
		os.Exit(1)
	}

	l := lexer.New(string(source))
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) > 0 {
		var parseErr error
		for _, e := range p.Errors() {
			parseErr = multierr.Append(parseErr, errors.New(e))
		}

		logger.Error("parser errors", zap.Error(parseErr))
		os.Exit(1)
	}

	c := checker.NewChecker()
	if err := c.CheckFile(file); err != nil {
		logger.Error("type error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("type-checks successfully", zap.String("file", inputFile))
}
