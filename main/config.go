package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile holds settings that rarely change between invocations. It is
// read from a YAML file and overridden by command line flags.
type Profile struct {
	Server    ServerConfig  `yaml:"server"`
	From      string        `yaml:"from"`
	LineWidth int           `yaml:"line_width"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ServerConfig describes the relay to connect to.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Helo           string        `yaml:"helo"`
	UseMX          bool          `yaml:"use_mx"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	Nameservers    []string      `yaml:"nameservers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// applyDefaults sets the values used when neither file nor flags give one.
func (p *Profile) applyDefaults() {
	p.Server.Port = 25
	p.Server.Helo = "localhost"
	p.Server.ConnectTimeout = 30 * time.Second
	p.Server.ReadTimeout = 5 * time.Minute
	p.Server.WriteTimeout = 5 * time.Minute
	p.LineWidth = 76
	p.Logging.Level = "warn"
}

// loadProfile returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults.
func loadProfile(path string) (*Profile, error) {
	p := &Profile{}
	p.applyDefaults()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return p, nil
}

// slogLevel maps the configured level name to a slog.Level.
func (p *Profile) slogLevel() slog.Level {
	switch strings.ToLower(p.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// options is one invocation: the profile after flag overrides plus the
// message to send.
type options struct {
	Profile

	To          []string
	Cc          []string
	Subject     string
	Content     string
	ContentFile string
	Attachments []string
}

var errUsage = errors.New("usage")

// parseArgs reads the flags, loads the profile named by -config and lets
// explicitly set flags override it.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("cn-smtp-client", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		host, from, subject, content, contentFile string
		helo, configPath                          string
		port                                      int
		to, cc, attach                            stringList
		useMX, verbose                            bool
	)
	fs.StringVar(&host, "h", "", "SMTP server `host`")
	fs.IntVar(&port, "p", 25, "SMTP server `port`")
	fs.StringVar(&from, "f", "", "sender `address`")
	fs.Var(&to, "t", "recipient `address` (repeatable)")
	fs.Var(&cc, "c", "carbon copy `address` (repeatable)")
	fs.StringVar(&subject, "s", "", "message `subject`")
	fs.StringVar(&content, "d", "", "message `content`")
	fs.StringVar(&contentFile, "D", "", "read message content from `file`")
	fs.Var(&attach, "a", "attach `file` (repeatable)")
	fs.StringVar(&helo, "helo", "", "`name` sent with HELO")
	fs.StringVar(&configPath, "config", "", "YAML profile `file`")
	fs.BoolVar(&useMX, "mx", false, "deliver to the MX of the first recipient when -h is absent")
	fs.BoolVar(&verbose, "v", false, "log the SMTP dialogue")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cn-smtp-client -h host [-p port] -f from -t to [-t to ...]\n"+
			"  [-c cc ...] [-s subject] -d content | -D content_file [-a file ...]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}

	profile, err := loadProfile(configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "h":
			profile.Server.Host = host
		case "p":
			profile.Server.Port = port
		case "f":
			profile.From = from
		case "helo":
			profile.Server.Helo = helo
		case "mx":
			profile.Server.UseMX = useMX
		case "v":
			if verbose {
				profile.Logging.Level = "debug"
			}
		}
	})

	opts := &options{
		Profile:     *profile,
		To:          to,
		Cc:          cc,
		Subject:     subject,
		Content:     content,
		ContentFile: contentFile,
		Attachments: attach,
	}
	if err := opts.validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return opts, nil
}

func (o *options) validate() error {
	switch {
	case o.From == "":
		return fmt.Errorf("%w: no from address", errUsage)
	case len(o.To) == 0:
		return fmt.Errorf("%w: no recipients", errUsage)
	case o.Content != "" && o.ContentFile != "":
		return fmt.Errorf("%w: only one of -d and -D can be specified", errUsage)
	case o.Content == "" && o.ContentFile == "":
		return fmt.Errorf("%w: no content specified", errUsage)
	case o.Server.Host == "" && !o.Server.UseMX:
		return fmt.Errorf("%w: no server specified", errUsage)
	case o.Server.Port <= 0 || o.Server.Port > 65535:
		return fmt.Errorf("%w: invalid port %d", errUsage, o.Server.Port)
	}
	return nil
}
