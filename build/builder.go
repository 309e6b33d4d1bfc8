package build

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yarlson/yarlang/checker"
	"github.com/yarlson/yarlang/codegen"
	"github.com/yarlson/yarlang/lexer"
	"github.com/yarlson/yarlang/mir"
	"github.com/yarlson/yarlang/module"
	"github.com/yarlson/yarlang/parser"
)

// Config represents yar.toml
type Config struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Entry   string `toml:"entry"`
	} `toml:"package"`
}

// Builder handles compilation
type Builder struct {
	projectRoot string
	cache       *CacheManager
	loader      *module.Loader
	log         *zap.Logger
}

// NewBuilder creates a builder
func NewBuilder(projectRoot string) *Builder {
	log, err := zap.NewProduction()
	if err != nil {
		log = zap.NewNop()
	}

	return &Builder{
		projectRoot: projectRoot,
		cache:       NewCacheManager(projectRoot),
		loader:      module.NewLoader(projectRoot),
		log:         log,
	}
}

// Build compiles the project: parse -> check -> lower -> codegen -> clang,
// driven off yar.toml (spec's module map names this "yar.toml-driven build
// pipeline").
func (b *Builder) Build() error {
	config, err := b.loadConfig()
	if err != nil {
		return err
	}

	if err := b.setupBuildDirs(); err != nil {
		return err
	}

	entryPath := filepath.Join(b.projectRoot, config.Package.Entry)

	_, err = b.loader.Load(entryPath)
	if err != nil {
		return err
	}

	modules := b.loader.GetAllModules()

	var buildErr error

	for _, mod := range modules {
		if err := b.compileModule(mod); err != nil {
			buildErr = multierr.Append(buildErr, fmt.Errorf("module %s: %w", mod.Name, err))
		}
	}

	if buildErr != nil {
		return buildErr
	}

	if err := b.linkModules(modules, config.Package.Name); err != nil {
		return err
	}

	return b.compileExecutable(config.Package.Name)
}

func (b *Builder) loadConfig() (*Config, error) {
	configPath := filepath.Join(b.projectRoot, "yar.toml")

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to load yar.toml: %w", err)
	}

	return &config, nil
}

func (b *Builder) setupBuildDirs() error {
	dirs := []string{
		filepath.Join(b.projectRoot, "build", "ir"),
		filepath.Join(b.projectRoot, "build", "bin"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) compileModule(mod *module.Module) error {
	irPath := filepath.Join(b.projectRoot, "build", "ir", mod.Name+".ll")
	mod.IRPath = irPath

	needsRebuild, err := b.cache.NeedsRebuild(mod.Path, b.getImportPaths(mod))
	if err != nil {
		return err
	}

	if !needsRebuild {
		b.log.Info("using cached module", zap.String("module", mod.Name))
		return nil
	}

	b.log.Info("building module", zap.String("module", mod.Name))

	source, err := os.ReadFile(mod.Path)
	if err != nil {
		return err
	}

	l := lexer.New(string(source))
	p := parser.New(l)
	file := p.ParseFile()

	if len(p.Errors()) > 0 {
		var parseErr error
		for _, e := range p.Errors() {
			parseErr = multierr.Append(parseErr, fmt.Errorf("%s", e))
		}

		return fmt.Errorf("parse errors in %s: %w", mod.Path, parseErr)
	}

	c := checker.NewChecker()
	if err := c.CheckFile(file); err != nil {
		return fmt.Errorf("type error in %s: %w", mod.Path, err)
	}

	lower := mir.NewLowerer()
	mirMod := lower.LowerFile(file)

	cg := codegen.NewCodegen()
	llvmMod := cg.GenModule(mirMod)

	if err := os.WriteFile(irPath, []byte(llvmMod.String()), 0644); err != nil {
		return err
	}

	sourceHash, err := b.cache.ComputeFileHash(mod.Path)
	if err != nil {
		return fmt.Errorf("failed to hash source: %w", err)
	}

	importHashes := make(map[string]string)

	for impPath, impModule := range b.getImportPaths(mod) {
		hash, err := b.cache.ComputeFileHash(impModule)
		if err != nil {
			return fmt.Errorf("failed to hash import %s: %w", impPath, err)
		}

		importHashes[impPath] = hash
	}

	entry := &CacheEntry{
		SourceHash: sourceHash,
		ImportHash: importHashes,
	}

	return b.cache.SaveCacheEntry(mod.Path, entry)
}

func (b *Builder) linkModules(modules []*module.Module, outputName string) error {
	b.log.Info("linking modules")

	irFiles := []string{}

	for _, mod := range modules {
		if mod.IRPath != "" {
			irFiles = append(irFiles, mod.IRPath)
		}
	}

	linkedPath := filepath.Join(b.projectRoot, "build", "ir", "linked.ll")

	llvmLink := findLLVMLink()

	args := append([]string{"-S", "-o", linkedPath}, irFiles...)
	cmd := exec.Command(llvmLink, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("llvm-link failed: %w\n%s", err, output)
	}

	return nil
}

// findLLVMLink searches for llvm-link in common locations
func findLLVMLink() string {
	if path, err := exec.LookPath("llvm-link"); err == nil {
		return path
	}

	commonPaths := []string{
		"/opt/homebrew/opt/llvm/bin/llvm-link",
		"/opt/homebrew/bin/llvm-link",
		"/usr/local/opt/llvm/bin/llvm-link",
		"/usr/local/bin/llvm-link",
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if entries, err := filepath.Glob("/opt/homebrew/Cellar/llvm*/*/bin/llvm-link"); err == nil && len(entries) > 0 {
		return entries[0]
	}

	return "llvm-link"
}

func (b *Builder) compileExecutable(name string) error {
	linkedIR := filepath.Join(b.projectRoot, "build", "ir", "linked.ll")
	outputPath := filepath.Join(b.projectRoot, "build", "bin", name)

	runtimeLib := filepath.Join(b.projectRoot, "runtime", "libyarrt.a")
	if _, err := os.Stat(runtimeLib); err != nil {
		b.log.Info("skipping executable generation, runtime library not found")
		return nil
	}

	cmd := exec.Command("clang",
		"-o", outputPath,
		linkedIR,
		runtimeLib,
		"-L/opt/homebrew/lib",
		"-lgc",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("clang failed: %w\n%s", err, output)
	}

	b.log.Info("finished", zap.String("output", outputPath))

	return nil
}

func (b *Builder) getImportPaths(mod *module.Module) map[string]string {
	result := make(map[string]string)
	for _, imp := range mod.Imports {
		result[imp.Path] = imp.Resolved
	}

	return result
}
