/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	minRoundDuration = 10 * time.Second
	maxRoundDuration = 5 * time.Minute
)

type Config struct {
	bind           string
	categories     []string
	language       string
	liveAnswers    bool
	pileupPoints   int
	port           int
	prefix         string
	profile        bool
	retainScores   bool
	roundDuration  time.Duration
	sessionTimeout time.Duration
	sharedPoints   int
	tlsCert        string
	tlsKey         string
	uniquePoints   int
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, ok := alphabets[c.language]; !ok {
		return fmt.Errorf("unknown language %q (supported: %s)", c.language, supportedLanguages())
	}
	if len(c.categories) == 0 {
		return errors.New("at least one category must be provided")
	}
	for i := range c.categories {
		c.categories[i] = strings.TrimSpace(c.categories[i])
		if c.categories[i] == "" {
			return errors.New("categories must not be empty")
		}
	}
	if c.uniquePoints < 1 || c.sharedPoints < 1 {
		return errors.New("--unique-points and --shared-points must be positive")
	}
	if c.pileupPoints < 0 {
		return errors.New("--pileup-points must not be negative")
	}

	c.roundDuration = clampDuration(c.roundDuration)

	return nil
}

// clampDuration bounds a round length to [minRoundDuration, maxRoundDuration].
func clampDuration(d time.Duration) time.Duration {
	if d < minRoundDuration {
		return minRoundDuration
	}
	if d > maxRoundDuration {
		return maxRoundDuration
	}
	return d
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordbox...",
		Short:         "A timed category word game, played in the browser against your friends.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDBOX_BIND)")
	fs.StringSliceVar(&cfg.categories, "categories", []string{"City", "Country", "Animal", "Food", "Name", "Thing"}, "category prompts answered each round (env: WORDBOX_CATEGORIES)")
	fs.StringVar(&cfg.language, "language", "en", "default alphabet used to draw round letters (env: WORDBOX_LANGUAGE)")
	fs.BoolVar(&cfg.liveAnswers, "live-answers", false, "broadcast raw answers mid-round as a separate event (env: WORDBOX_LIVE_ANSWERS)")
	fs.IntVar(&cfg.pileupPoints, "pileup-points", 0, "points per answer shared by three or more players, 0 to score them as shared (env: WORDBOX_PILEUP_POINTS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WORDBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WORDBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WORDBOX_PROFILE)")
	fs.BoolVar(&cfg.retainScores, "retain-scores", true, "keep a player's accumulated score after they leave a room (env: WORDBOX_RETAIN_SCORES)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", time.Minute, "default round length when the host does not pick one (env: WORDBOX_ROUND_DURATION)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: WORDBOX_IDLE_SESSION_TIMEOUT)")
	fs.IntVar(&cfg.sharedPoints, "shared-points", 10, "points per answer given by two or more players (env: WORDBOX_SHARED_POINTS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WORDBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WORDBOX_TLS_KEY)")
	fs.IntVar(&cfg.uniquePoints, "unique-points", 20, "points per answer no other player gave (env: WORDBOX_UNIQUE_POINTS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WORDBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WORDBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
