// Package render executes compiled server bundles in an isolated script
// sandbox and wraps the resulting markup in minimal document shells.
package render

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dop251/goja"
	"sunset/internal/config"
)

//go:embed assets/sandbox.js
var sandboxJS string

//go:embed assets/runtime.js
var runtimeJS string

// Sandbox renders compiled server bundles to static markup. Every render
// gets a fresh interpreter, so module identity is unique per build by
// construction: no cache can ever hand back a stale module for a different
// revision, and the inert environment globals vanish with the VM on every
// exit path.
type Sandbox struct {
	retainBundles bool
	timeout       time.Duration
	logger        *slog.Logger
}

// NewSandbox creates a render sandbox. When retainBundles is set, each
// compiled bundle is written to a uniquely named file under the temp dir for
// post-mortem inspection.
func NewSandbox(retainBundles bool, logger *slog.Logger) *Sandbox {
	return &Sandbox{
		retainBundles: retainBundles,
		timeout:       config.RenderTimeout,
		logger:        logger,
	}
}

// Render evaluates the CommonJS bundle and renders its default export to a
// static markup string via the host runtime's static-markup renderer. Any
// failure at any step surfaces as an error; the compose layer converts it to
// its uniform unavailable result.
func (s *Sandbox) Render(ctx context.Context, bundle, projectID string, rev int) (markup string, err error) {
	if s.retainBundles {
		s.retain(bundle, projectID, rev)
	}

	// goja raises Go panics for some internal error paths; the sandbox
	// boundary converts everything to an error return.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	vm := goja.New()

	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt("render timeout")
	})
	defer timer.Stop()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := vm.RunScript("sandbox.js", sandboxJS); err != nil {
		return "", fmt.Errorf("install environment stubs: %w", err)
	}
	if _, err := vm.RunScript("runtime.js", runtimeJS); err != nil {
		return "", fmt.Errorf("install host runtime: %w", err)
	}

	harness := "(function () {\n" +
		"var module = { exports: {} };\n" +
		"var require = function (name) {\n" +
		"  var m = __sunset_modules[name];\n" +
		"  if (!m) throw new Error(\"unknown external module: \" + name);\n" +
		"  return m;\n" +
		"};\n" +
		"(function (module, exports, require) {\n" +
		bundle + "\n" +
		"})(module, module.exports, require);\n" +
		"var component = module.exports && module.exports.default !== undefined ? module.exports.default : module.exports;\n" +
		"if (typeof component !== \"function\") throw new Error(\"bundle default export is not an invocable component\");\n" +
		"var react = __sunset_modules[\"react\"];\n" +
		"var server = __sunset_modules[\"react-dom/server\"];\n" +
		"return server.renderToStaticMarkup(react.createElement(component, null));\n" +
		"})()"

	value, err := vm.RunScript("render-harness.js", harness)
	if err != nil {
		return "", fmt.Errorf("execute server bundle: %w", err)
	}

	return value.String(), nil
}

// retain writes the bundle to a uniquely named temp file. The name carries
// project, revision, and a nanosecond suffix so concurrent builds can never
// collide.
func (s *Sandbox) retain(bundle, projectID string, rev int) {
	name := fmt.Sprintf("sunset-bundle-%s-%d-%d.js", projectID, rev, time.Now().UnixNano())
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, []byte(bundle), 0o600); err != nil {
		s.logger.Warn("failed to retain debug bundle", "path", path, "error", err)
		return
	}
	s.logger.Debug("retained debug bundle", "path", path)
}
