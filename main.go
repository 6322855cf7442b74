package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/justina-lang/justinavm/config"
	"github.com/justina-lang/justinavm/debugger"
	"github.com/justina-lang/justinavm/engine"
	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/interp"
	"github.com/justina-lang/justinavm/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

// stdioHost implements engine.Host against the process's own stdin/
// stdout, the direct-execution-mode counterpart to debugger.bufferHost
// (which buffers instead of writing straight through).
type stdioHost struct {
	in *bufio.Reader
}

func (h *stdioHost) Print(s string) { fmt.Print(s) }
func (h *stdioHost) ReadLine() (string, bool) {
	line, err := h.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return trimNewline(line), true
}
func (h *stdioHost) Millis() int64 { return time.Now().UnixMilli() }
func (h *stdioHost) Micros() int64 { return time.Now().UnixMicro() }

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in interactive debugger mode")
		configFile  = flag.String("config", "", "Path to config file (default: platform config directory)")
		fsRoot      = flag.String("fsroot", "", "Restrict loadProg and file built-ins to this directory (default: current directory)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("justinavm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	root, err := loader.NewRoot(*fsRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving filesystem root: %v\n", err)
		os.Exit(1)
	}
	if *verboseMode {
		fmt.Printf("Filesystem root: %v\n", *fsRoot)
	}

	limits := limitsFromConfig(cfg)
	house := housekeeping.New()

	if *debugMode || flag.NArg() == 0 {
		dbg := debugger.NewDebugger(limits, house)
		dbg.Interp.Root = root

		if flag.NArg() > 0 {
			if err := dbg.Interp.LoadProgram(flag.Arg(0)); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Program loaded: %s\n", flag.Arg(0))
		}

		fmt.Println("justinavm debugger - type 'help' for the language's debugging commands")
		if err := debugger.RunCLI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct execution mode: run one program file to completion.
	progFile := flag.Arg(0)
	host := &stdioHost{in: bufio.NewReader(os.Stdin)}
	it := interp.New(limits, host, house)
	it.Root = root

	if *verboseMode {
		fmt.Printf("Loading program: %s\n", progFile)
	}
	if err := it.LoadProgram(progFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	if err := it.RearmBreakpoints(); err != nil {
		fmt.Fprintf(os.Stderr, "Error arming breakpoints: %v\n", err)
		os.Exit(1)
	}

	it.Engine.Mode = engine.ModeRun
	if err := it.Run(0); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Println("Execution complete")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func limitsFromConfig(cfg *config.Config) interp.Limits {
	limits := interp.DefaultLimits
	if cfg.Execution.StreamCapacity > 0 {
		limits.StreamCapacity = cfg.Execution.StreamCapacity
	}
	if cfg.Execution.MaxBreakpoints > 0 {
		limits.MaxBreakpoints = cfg.Execution.MaxBreakpoints
	}
	if cfg.Execution.LastValuesDepth > 0 {
		limits.FIFOSize = cfg.Execution.LastValuesDepth
	}
	if cfg.Execution.LineRangeCap > 0 {
		limits.LineRangeCap = cfg.Execution.LineRangeCap
	}
	return limits
}

func printHelp() {
	fmt.Printf(`justinavm %s

Usage: justinavm [options] [program-file]

Options:
  -help              Show this help message
  -version           Show version information
  -debug             Start in interactive debugger mode (default when no
                     program file is given)
  -config FILE       Load configuration from FILE (default: platform
                     config directory, see config.GetConfigPath)
  -fsroot DIR        Restrict loadProg and file built-ins to this
                     directory (default: current directory)
  -verbose           Enable verbose output

Examples:
  # Run a program directly
  justinavm examples/hello.jus

  # Start the interactive debugger with no program loaded
  justinavm -debug

  # Load a program into the debugger and step through it with the
  # language's own setBP/go/step/stepOver/stepOut/abort commands
  justinavm -debug examples/fibonacci.jus

  # Restrict file operations to a specific directory
  justinavm -fsroot ./test_data -debug

For more information, see the DESIGN.md file.
`, Version)
}
