package bundle

import (
	_ "embed"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"sunset/internal/config"
	"sunset/internal/sitepath"
)

//go:embed assets/react.js
var reactShim string

//go:embed assets/jsx-runtime.js
var jsxRuntimeShim string

//go:embed assets/react-dom.js
var reactDOMShim string

//go:embed assets/react-dom-client.js
var reactDOMClientShim string

//go:embed assets/react-dom-server.js
var reactDOMServerShim string

//go:embed assets/react-router-dom.js
var reactRouterShim string

var runtimeShims = map[string]string{
	"react":                 reactShim,
	"react/jsx-runtime":     jsxRuntimeShim,
	"react/jsx-dev-runtime": jsxRuntimeShim,
	"react-dom":             reactDOMShim,
	"react-dom/client":      reactDOMClientShim,
	"react-dom/server":      reactDOMServerShim,
	"react-router-dom":      reactRouterShim,
}

// siteScheme prefixes canonical snapshot paths in entry stubs so the plugin
// can tell them apart from real relative specifiers.
const siteScheme = "site:"

// runtimePackagePattern matches the host-provided runtime packages.
var runtimePackagePattern = regexp.MustCompile(`^(react|react-dom|react-router-dom)(/.+)?$`)

// Result is one compiled build target.
type Result struct {
	Code     string
	Warnings []string
}

// Builder compiles the import graph of one revision snapshot into a
// server-executable CommonJS module and a self-contained browser module.
// Both targets come from the same graph; no filesystem is consulted for
// project content.
type Builder struct {
	stack          *config.StackConfig
	nodeModulesDir string
	logger         *slog.Logger
}

// NewBuilder creates a builder. nodeModulesDir may be empty; browser builds
// then inline the embedded runtime shims.
func NewBuilder(stack *config.StackConfig, nodeModulesDir string, logger *slog.Logger) *Builder {
	return &Builder{
		stack:          stack,
		nodeModulesDir: nodeModulesDir,
		logger:         logger,
	}
}

// ComponentEntry returns the component entry for the snapshot: the first
// configured candidate matched by basename, so entries under a subdirectory
// (a project rooted at landing/index.tsx) qualify too. The shallowest match
// wins.
func (b *Builder) ComponentEntry(snapshot map[string]string) (string, bool) {
	for _, entry := range b.stack.ComponentEntries {
		if p, ok := sitepath.FindEntry(snapshot, entry); ok {
			return p, true
		}
	}
	return "", false
}

// BuildServer bundles the entry plus its graph into one CommonJS module with
// the UI runtime and router left external, so the host's single copy is
// reused by the render sandbox.
func (b *Builder) BuildServer(entry string, snapshot map[string]string) (*Result, error) {
	graph := Discover(entry, snapshot)
	stub := fmt.Sprintf("import Component from %q;\nexport default Component;\n", siteScheme+entry)

	// ES2017 keeps the output inside what the embedded interpreter executes.
	return b.run(stub, graph, snapshot, api.BuildOptions{
		Format:   api.FormatCommonJS,
		Platform: api.PlatformNeutral,
		Target:   api.ES2017,
		External: b.stack.ExternalPackages,
	}, false)
}

// BuildBrowser bundles a generated mounting stub plus the graph into one
// self-contained browser module: the runtime is resolved from the host's
// installed packages when configured, otherwise inlined from embedded shims.
func (b *Builder) BuildBrowser(entry string, snapshot map[string]string) (*Result, error) {
	graph := Discover(entry, snapshot)
	stub := fmt.Sprintf(
		"import { createRoot } from \"react-dom/client\";\n"+
			"import App from %q;\n"+
			"const container = document.getElementById(%q);\n"+
			"if (container) {\n\tcreateRoot(container).render(<App />);\n}\n",
		siteScheme+entry, b.stack.MountElementID)

	return b.run(stub, graph, snapshot, api.BuildOptions{
		Format:   api.FormatIIFE,
		Platform: api.PlatformBrowser,
		Target:   api.ES2020,
	}, true)
}

func (b *Builder) run(stub string, graph *Graph, snapshot map[string]string, opts api.BuildOptions, inlineRuntime bool) (*Result, error) {
	// Only graph members are visible to the resolver: the depth and size
	// caps apply to the build exactly as they applied to discovery.
	files := make(map[string]string, len(graph.Files))
	for _, p := range graph.Files {
		files[p] = snapshot[p]
	}

	plugins := []api.Plugin{b.snapshotPlugin(files)}
	if inlineRuntime {
		plugins = append(plugins, b.runtimePlugin())
	}

	opts.Stdin = &api.StdinOptions{
		Contents:   stub,
		Sourcefile: "entry.tsx",
		Loader:     api.LoaderTSX,
	}
	opts.Bundle = true
	opts.Write = false
	opts.Outdir = "out"
	opts.JSX = api.JSXAutomatic
	opts.Plugins = plugins
	opts.LogLevel = api.LogLevelSilent

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("bundle build: %s", result.Errors[0].Text)
	}

	warnings := append([]string(nil), graph.Warnings...)
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Text)
	}

	for _, out := range result.OutputFiles {
		if strings.HasSuffix(out.Path, ".js") {
			return &Result{Code: string(out.Contents), Warnings: warnings}, nil
		}
	}
	return nil, fmt.Errorf("bundle build produced no module output")
}

// snapshotPlugin serves module content from the in-memory snapshot:
// site:-namespaced entries and relative specifiers inside snapshot modules
// never touch disk. Unmatched relative specifiers load as an empty module so
// partial builds still compile; unmatched bare specifiers fall through to
// the host's normal resolution.
func (b *Builder) snapshotPlugin(files map[string]string) api.Plugin {
	return api.Plugin{
		Name: "revision-snapshot",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + siteScheme},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, siteScheme),
						Namespace: "site",
					}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: `^\.\.?/`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Namespace != "site" {
						return api.OnResolveResult{}, nil
					}
					resolved, ok := ResolveSpecifier(args.Importer, args.Path, files)
					if !ok {
						return api.OnResolveResult{Path: args.Path, Namespace: "dropped"}, nil
					}
					return api.OnResolveResult{Path: resolved, Namespace: "site"}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "site"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					source, ok := files[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("module %s not in snapshot", args.Path)
					}
					loader := loaderForPath(args.Path)
					return api.OnLoadResult{Contents: &source, Loader: loader}, nil
				})

			empty := "module.exports = {};"
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "dropped"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{Contents: &empty, Loader: api.LoaderJS}, nil
				})
		},
	}
}

// runtimePlugin inlines the runtime packages into browser builds. Host
// copies are preferred when a node_modules tree is configured; resolution
// falls back to package-metadata inspection and finally the embedded shims.
func (b *Builder) runtimePlugin() api.Plugin {
	return api.Plugin{
		Name: "runtime-inline",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: runtimePackagePattern.String()},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if b.nodeModulesDir != "" {
						if entry, err := ResolvePackage(b.nodeModulesDir, args.Path); err == nil {
							return api.OnResolveResult{Path: entry}, nil
						} else if b.logger != nil {
							b.logger.Debug("host runtime resolution failed, using embedded shim",
								"package", args.Path, "error", err)
						}
					}
					return api.OnResolveResult{Path: args.Path, Namespace: "runtime"}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "runtime"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					shim, ok := runtimeShims[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("no runtime shim for %s", args.Path)
					}
					return api.OnLoadResult{Contents: &shim, Loader: api.LoaderJS}, nil
				})
		},
	}
}

func loaderForPath(p string) api.Loader {
	switch path.Ext(p) {
	case ".tsx":
		return api.LoaderTSX
	case ".ts":
		return api.LoaderTS
	case ".jsx":
		return api.LoaderJSX
	case ".css":
		// Stylesheets bundle as text: server renders never consult them and
		// the preview pulls styling from the CDN shell.
		return api.LoaderText
	default:
		return api.LoaderJS
	}
}
