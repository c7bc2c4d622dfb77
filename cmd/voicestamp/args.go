package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"voicestamp/internal/config"
)

// options is the parsed command line.
type options struct {
	cfg        config.Config
	inputs     []string
	configPath string
	saveConfig string
	help       bool
	version    bool
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > environment > config file > defaults
func parseArgs(ctx context.Context, args []string) (options, error) {
	var opts options

	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			opts.help = true
			return opts, nil
		case "--version":
			opts.version = true
			return opts, nil
		}
	}

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a path argument", args[i])
			}
			opts.configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(opts.configPath)
	if err != nil {
		return opts, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.configPath == "" {
		opts.configPath = config.FindConfigFile()
	}
	if err := config.ApplyEnv(ctx, &cfg); err != nil {
		return opts, err
	}

	value := func(i *int) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires an argument", args[*i])
		}
		*i++
		return args[*i], nil
	}
	number := func(i *int) (int, error) {
		flag := args[*i]
		s, err := value(i)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %s", flag, s)
		}
		return n, nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--in", "-i":
			// every following non-flag argument is an input
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				opts.inputs = append(opts.inputs, args[i])
			}

		case "--out", "-o":
			s, err := value(&i)
			if err != nil {
				return opts, err
			}
			cfg.FileOut = config.ExpandHome(s)

		case "--out-format", "-of":
			if cfg.FileOutFormat, err = value(&i); err != nil {
				return opts, err
			}

		case "--title-format", "-tf":
			if cfg.TitleFormat, err = value(&i); err != nil {
				return opts, err
			}

		case "--tick-format", "-tp":
			if cfg.TickFormat, err = value(&i); err != nil {
				return opts, err
			}

		case "--tick-interval", "-ti":
			if cfg.TickInterval, err = number(&i); err != nil {
				return opts, err
			}

		case "--tick-offset", "-to":
			if cfg.TickOffset, err = number(&i); err != nil {
				return opts, err
			}

		case "--tick-add", "-ta":
			if cfg.TickAdd, err = number(&i); err != nil {
				return opts, err
			}

		case "--speech-volume", "-sv":
			s, err := value(&i)
			if err != nil {
				return opts, err
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return opts, fmt.Errorf("invalid %s value: %s", arg, s)
			}
			cfg.SpeechVolumeFactor = f

		case "--speech-speed", "-ss":
			if cfg.SpeechSpeed, err = number(&i); err != nil {
				return opts, err
			}

		case "--segment-duration", "-sd":
			if cfg.SplitSegmentDuration, err = number(&i); err != nil {
				return opts, err
			}

		case "--parallel", "-p":
			if cfg.ParallelSegments, err = number(&i); err != nil {
				return opts, err
			}

		case "--config-save", "-cs":
			if opts.saveConfig, err = value(&i); err != nil {
				return opts, err
			}

		case "--force", "-f":
			cfg.ForceOverwrite = true

		case "--dry-run", "-n":
			cfg.DryRun = true

		case "--verbose", "-v":
			cfg.Verbose = true

		case "--quiet", "-q":
			cfg.Quiet = true

		case "--debug", "-d":
			cfg.Debug = true

		case "--no-cleanup":
			cfg.NoCleanup = true

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			opts.inputs = append(opts.inputs, arg)
		}
	}

	if len(opts.inputs) == 0 && opts.saveConfig == "" {
		return opts, fmt.Errorf("no input files given (see --help)")
	}

	opts.cfg = cfg
	return opts, nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("voicestamp - Speak the track title and elapsed minutes over MP3 files")
	fmt.Println()
	fmt.Println("Usage: voicestamp [options] <file.mp3|dir>...")
	fmt.Println()
	fmt.Println("Input/output:")
	fmt.Println("  -i, --in <file>...            Input files or directories (positional arguments work too)")
	fmt.Println("  -o, --out <path>              Output directory, or output file for a single input")
	fmt.Println("  -of, --out-format <fmt>       Output file name format (default: \"{name} (voicestamped){segment_name}.{ext}\")")
	fmt.Println("  -f, --force                   Overwrite existing output files")
	fmt.Println()
	fmt.Println("Speech:")
	fmt.Println("  -tf, --title-format <fmt>     Spoken title format (default: \"{title}\")")
	fmt.Println("  -tp, --tick-format <fmt>      Spoken tick format, empty disables ticks (default: \"{minutes} minutes\")")
	fmt.Println("  -ti, --tick-interval <min>    Minutes between ticks (default: 5)")
	fmt.Println("  -to, --tick-offset <min>      Minute of the first tick (default: 5)")
	fmt.Println("  -ta, --tick-add <min>         Value added to every announced minute (default: 0)")
	fmt.Println("  -sv, --speech-volume <x>      Speech loudness relative to the music (default: 1.0)")
	fmt.Println("  -ss, --speech-speed <wpm>     Speech speed in words per minute, 80-450 (default: 150)")
	fmt.Println()
	fmt.Println("Segments:")
	fmt.Println("  -sd, --segment-duration <min> Split output into segments of about this length (default: 0, no split)")
	fmt.Println("  -p, --parallel <n>            Segments processed in parallel, 1-10 (default: 1)")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  -c, --config <path>           Path to config file")
	fmt.Println("  -cs, --config-save <path>     Save the effective configuration and exit")
	fmt.Println()
	fmt.Println("Run:")
	fmt.Println("  -n, --dry-run                 Show what would be done without writing anything")
	fmt.Println("  -v, --verbose                 Show detailed output")
	fmt.Println("  -q, --quiet                   Only show warnings and errors")
	fmt.Println("  -d, --debug                   Debug output, stop at the first failing file")
	fmt.Println("      --no-cleanup              Keep temporary files")
	fmt.Println("      --version                 Show version")
	fmt.Println("  -h, --help                    Show this help message")
	fmt.Println()
	fmt.Println("Placeholders:")
	fmt.Println("  title, artist, album_artist, album_title, composer, performer, comment,")
	fmt.Println("  track_number, file_name, config_name, segment_number, segment_count,")
	fmt.Println("  segment_name; tick formats also get minutes and minutes_digits")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./voicestamp.yaml")
	fmt.Println("  ~/.config/voicestamp/config.yaml")
	fmt.Println("  ~/.voicestamp.yaml")
	fmt.Println()
	fmt.Printf("Environment overrides use the %s prefix, e.g. %sTICK_INTERVAL=10\n", config.EnvPrefix, config.EnvPrefix)
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  voicestamp --dry-run run.mp3")
	fmt.Println("  voicestamp -ti 10 -tp \"{minutes} minutes of {title}\" run.mp3")
	fmt.Println("  voicestamp -sd 30 -o ~/stamped ~/podcasts")
}
