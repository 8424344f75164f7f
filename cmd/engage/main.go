// Command engage runs Engage programs: source files, piped stdin, a
// line-based REPL, and precompiled bytecode.
//
//	engage script.engage          run a source file
//	engage -backend=tree f.engage run on the tree-walking evaluator
//	engage -c script.engage       compile to script.ebc
//	engage -r script.ebc          run compiled bytecode
//	engage -disasm script.engage  print the bytecode listing
//	engage repl                   interactive session
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/backend"
	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/lexer"
	"github.com/MatthewMacomber/EngageLang/internal/parser"
	"github.com/MatthewMacomber/EngageLang/internal/pipeline"
	"github.com/MatthewMacomber/EngageLang/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("engage", flag.ExitOnError)
	backendName := fs.String("backend", "", "execution engine: tree or vm (default from engage.yaml, then vm)")
	compileOnly := fs.Bool("c", false, "compile to bytecode instead of running")
	runBytecode := fs.Bool("r", false, "treat the input file as compiled bytecode")
	disasm := fs.Bool("disasm", false, "print the bytecode listing instead of running")
	fs.Parse(args)

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}
	if *backendName == "" {
		*backendName = cfg.Backend
	}

	eng, err := backend.New(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		fs.Usage()
		return 2
	}

	switch {
	case fs.NArg() > 0 && fs.Arg(0) == "repl":
		return repl(eng, cfg)
	case fs.NArg() > 0:
		path := fs.Arg(0)
		if *runBytecode || (!cfg.IsSourceFile(path) && strings.HasSuffix(path, config.BytecodeFileExt)) {
			return runCompiled(path, cfg)
		}
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "engage:", err)
			return config.ExitSourceError
		}
		if *compileOnly {
			return compileFile(path, string(source))
		}
		if *disasm {
			return disassemble(path, string(source))
		}
		return runSource(string(source), path, eng, cfg)
	case !isatty.IsTerminal(os.Stdin.Fd()):
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "engage:", err)
			return config.ExitSourceError
		}
		return runSource(string(source), "<stdin>", eng, cfg)
	default:
		fs.Usage()
		return 2
	}
}

// runSource drives the full pipeline for one program.
func runSource(source, path string, eng backend.Backend, cfg *config.Config) int {
	exec := &backend.ExecutionProcessor{
		Backend:     eng,
		ErrOut:      os.Stderr,
		TaskWorkers: cfg.TaskWorkers,
	}
	ctx := pipeline.NewContext(source, path)
	ctx.Out = os.Stdout
	ctx.In = os.Stdin

	p := pipeline.NewPipeline(lexer.NewLexerProcessor(), parser.NewParserProcessor(), exec)
	if err := p.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitRuntimeError
	}
	if ctx.HasErrors() {
		reportDiagnostics(ctx)
		return config.ExitSourceError
	}
	if exec.RuntimeErr != nil {
		return config.ExitRuntimeError
	}
	return config.ExitOK
}

// frontend lexes and parses; nil means diagnostics were reported.
func frontend(source, path string) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(source, path)
	p := pipeline.NewPipeline(lexer.NewLexerProcessor(), parser.NewParserProcessor())
	if err := p.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return nil
	}
	if ctx.HasErrors() {
		reportDiagnostics(ctx)
		return nil
	}
	return ctx
}

func compileFile(path, source string) int {
	ctx := frontend(source, path)
	if ctx == nil {
		return config.ExitSourceError
	}
	chunk, err := vm.Compile(ctx.AstRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}

	outPath := strings.TrimSuffix(path, config.SourceFileExt) + config.BytecodeFileExt
	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}
	defer f.Close()
	if err := vm.WriteChunk(f, chunk); err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}
	return config.ExitOK
}

func disassemble(path, source string) int {
	ctx := frontend(source, path)
	if ctx == nil {
		return config.ExitSourceError
	}
	chunk, err := vm.Compile(ctx.AstRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}
	fmt.Print(chunk.Disassemble())
	return config.ExitOK
}

func runCompiled(path string, cfg *config.Config) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}
	defer f.Close()
	chunk, err := vm.ReadChunk(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return config.ExitSourceError
	}

	host := evaluator.NewWithIO(os.Stdout, os.Stderr, os.Stdin)
	if cfg.TaskWorkers > 0 {
		host.Scheduler.SetWorkerLimit(cfg.TaskWorkers)
	}
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)
	if _, errObj := vm.New(host).Run(chunk, env); errObj != nil {
		fmt.Fprintln(os.Stderr, errObj.Report())
		return config.ExitRuntimeError
	}
	return config.ExitOK
}

func reportDiagnostics(ctx *pipeline.PipelineContext) {
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	for _, d := range ctx.Errors {
		fmt.Fprintln(os.Stderr, d.Format(color))
	}
}

// repl reads statements line by line. Input is buffered until it
// parses as a complete program, so multi-line blocks work without
// any line editing support.
func repl(eng backend.Backend, cfg *config.Config) int {
	host := evaluator.NewWithIO(os.Stdout, os.Stderr, os.Stdin)
	if cfg.TaskWorkers > 0 {
		host.Scheduler.SetWorkerLimit(cfg.TaskWorkers)
	}
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)

	fmt.Printf("Engage (%s backend). Statements end with '.', blocks with 'end'.\n", eng.Name())
	scanner := bufio.NewScanner(os.Stdin)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			fmt.Print(">> ")
		} else {
			fmt.Print(".. ")
		}
		if !scanner.Scan() {
			fmt.Println()
			return config.ExitOK
		}
		buffer.WriteString(scanner.Text())
		buffer.WriteByte('\n')

		program, state := replParse(buffer.String())
		switch state {
		case replIncomplete:
			continue
		case replError:
			buffer.Reset()
			continue
		}
		buffer.Reset()

		result, errObj := eng.Run(program, host, env)
		if errObj != nil {
			fmt.Fprintln(os.Stderr, errObj.Report())
			continue
		}
		if result != nil && result != evaluator.NONE {
			fmt.Println(result.Inspect())
		}
	}
}

type replState int

const (
	replComplete replState = iota
	replIncomplete
	replError
)

func replParse(source string) (*ast.Program, replState) {
	ctx := pipeline.NewContext(source, "<repl>")
	p := pipeline.NewPipeline(lexer.NewLexerProcessor(), parser.NewParserProcessor())
	if err := p.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "engage:", err)
		return nil, replError
	}
	for _, d := range ctx.Errors {
		// An unterminated block just means more lines are coming.
		if d.Code == diagnostics.ErrP003 {
			return nil, replIncomplete
		}
	}
	if ctx.HasErrors() {
		reportDiagnostics(ctx)
		return nil, replError
	}
	return ctx.AstRoot, replComplete
}
