//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// binaries maps each command to its package.
var binaries = map[string]string{
	"segqual":       "./cmd/segqual",
	"segqual-batch": "./cmd/segqual-batch",
}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles the segqual and segqual-batch binaries.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_Single, Build_Batch)
	return nil
}

// Build_Single compiles the segqual binary with version information.
func Build_Single() error {
	st.Deps(Init)
	return buildBinary("segqual")
}

// Build_Batch compiles the segqual-batch binary with version information.
func Build_Batch() error {
	st.Deps(Init)
	return buildBinary("segqual-batch")
}

func buildBinary(name string) error {
	out := "bin/" + name
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Printf("%s is up to date\n", name)
		}
		return nil
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, binaries[name])
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if v := strings.TrimSpace(version); v != "" {
		return "-X main.version=" + v
	}
	return "-X main.version=dev-" + time.Now().Format("20060102")
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode.
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// TestNoCGO runs tests with cgo disabled; SQLite tests skip themselves.
func TestNoCGO() error {
	st.Deps(Init)
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "0"}, "go", "test", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// LintFix runs golangci-lint with auto-fix enabled.
func LintFix() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts and generated phantom data.
func Clean() error {
	for _, a := range []string{"bin/", "testdata/phantom/", "coverage.out", "coverage.html"} {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for name := range binaries {
		src := "bin/" + name
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, src); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Proto namespace for the label volume schema.
type Proto st.Namespace

// Generate regenerates the protobuf Go code from .proto files.
func (Proto) Generate() error {
	protoFile := "internal/proto/labelvolume.proto"
	outDir := "internal/proto"

	// Check if the .proto file exists
	if _, err := os.Stat(protoFile); os.IsNotExist(err) {
		return fmt.Errorf("proto file not found: %s", protoFile)
	}

	return sh.RunV("protoc",
		"--go_out="+outDir,
		"--go_opt=paths=source_relative",
		protoFile,
	)
}

// Phantom namespace for synthetic end-to-end data.
type Phantom st.Namespace

// Generate writes the synthetic volumes and batch descriptor to testdata/phantom.
func (Phantom) Generate() error {
	return sh.RunV("go", "run", "./scripts/make-phantom.go")
}

// Evaluate runs segqual-batch over the synthetic data.
func (Phantom) Evaluate() error {
	st.Deps(Build_Batch, Phantom.Generate)

	args := []string{"testdata/phantom/batch.json"}
	if w := os.Getenv("SEGQUAL_WORKERS"); w != "" {
		args = append([]string{"-workers", w}, args...)
	}
	return sh.RunV("./bin/segqual-batch", args...)
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy runs go mod tidy and verifies the go.sum is clean.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
