package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/derivalab/pricing-bridge/config"
	"github.com/derivalab/pricing-bridge/namespace"
	"github.com/derivalab/pricing-bridge/session"
)

// argList collects repeated -arg flags in order.
type argList []string

func (a *argList) String() string { return strings.Join(*a, ",") }

func (a *argList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to workbench TOML config")
		artifactArg = flag.String("artifact", "", "Path to pricing artifact (overrides config)")
		baseDir     = flag.String("base", "", "Base directory for relative artifact paths")
		requireArg  = flag.String("require", "", "Required namespaces (comma-separated, overrides config)")
		list        = flag.Bool("list", false, "List bound namespaces and symbols, then exit")
		call        = flag.String("call", "", "Symbol to call (namespace#function)")
		interactive = flag.Bool("i", false, "Interactive symbol browser")
	)
	var args argList
	flag.Var(&args, "arg", "Argument for -call (repeatable, in order)")
	flag.Parse()

	if !*list && *call == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: workbench [-config file] [-artifact file.wasm] -list")
		fmt.Fprintln(os.Stderr, "       workbench -call ns#func [-arg v]...")
		fmt.Fprintln(os.Stderr, "       workbench -i  (interactive browser)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath, *artifactArg, *baseDir, *requireArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		// Console logging would tear up the TUI.
		cfg.Logger = zap.NewNop()
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *list, *call, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, artifactOverride, baseOverride, requireOverride string) (session.Config, error) {
	file := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return session.Config{}, err
		}
		file = loaded
	}

	cfg := file.SessionConfig()
	if artifactOverride != "" {
		cfg.ArtifactPath = artifactOverride
	}
	if baseOverride != "" {
		cfg.BaseDir = baseOverride
	}
	if requireOverride != "" {
		cfg.Require = strings.Split(requireOverride, ",")
	}

	logger, err := newLogger(file)
	if err != nil {
		return session.Config{}, err
	}
	cfg.Logger = logger
	return cfg, nil
}

func newLogger(file *config.File) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(file.ZapLevel())
	return zcfg.Build()
}

func run(cfg session.Config, list bool, call string, args argList) error {
	ctx := context.Background()

	s := session.New(cfg)
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}
	defer s.Close(ctx)

	if list {
		printNamespaces(s)
		if call == "" {
			return nil
		}
	}

	nsPath, _, ok := strings.Cut(call, "#")
	if !ok {
		return fmt.Errorf("call target %q: want namespace#function", call)
	}
	ns, err := s.Namespace(nsPath)
	if err != nil {
		return err
	}
	sym, symName := findSymbol(ns, call)
	if sym == nil {
		return fmt.Errorf("symbol %q not found in %s", symName, ns.FullPath())
	}

	callArgs, err := convertArgs(sym, args)
	if err != nil {
		return err
	}

	fmt.Printf("Calling %s#%s(%s)...\n", ns.FullPath(), sym.Name, strings.Join(args, ", "))
	result, err := s.Call(ctx, call, callArgs...)
	if err != nil {
		return err
	}
	fmt.Printf("Result: %v\n", result)
	return nil
}

func findSymbol(ns *namespace.Namespace, call string) (*namespace.Symbol, string) {
	_, symName, _ := strings.Cut(call, "#")
	sym, ok := ns.Symbol(symName)
	if !ok {
		return nil, symName
	}
	return sym, symName
}

func convertArgs(sym *namespace.Symbol, args argList) ([]any, error) {
	out := make([]any, len(args))
	for i, raw := range args {
		if i < len(sym.Params) {
			v, err := parseArg(raw, sym.Params[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			out[i] = v
			continue
		}
		// No declared signature; numbers pass as f64, the rest as text.
		out[i] = looseConvert(raw)
	}
	return out, nil
}

func printNamespaces(s *session.Session) {
	fmt.Println("Bound namespaces:")
	for _, ns := range s.Namespaces() {
		fmt.Printf("  %s\n", ns.FullPath())
		for _, sym := range ns.Symbols() {
			fmt.Printf("    %s\n", formatSymbol(sym))
		}
	}
}

func formatSymbol(sym *namespace.Symbol) string {
	var params []string
	for i, p := range sym.Params {
		pname := fmt.Sprintf("arg%d", i)
		if i < len(sym.ParamNames) && sym.ParamNames[i] != "" {
			pname = sym.ParamNames[i]
		}
		params = append(params, pname+": "+typeLabel(p))
	}
	result := ""
	if len(sym.Results) > 0 {
		result = " -> " + typeLabel(sym.Results[0])
	}
	return sym.Name + "(" + strings.Join(params, ", ") + ")" + result
}
