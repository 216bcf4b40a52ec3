// Command coverpick selects a header image for a post and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-coverpick"
)

var (
	configPath string
	outDir     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "coverpick",
	Short: "Pick or generate a header image for a short post",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage: true,
}

var pickCmd = &cobra.Command{
	Use:   "pick [post text | -]",
	Short: "Run the image waterfall for one post",
	Long: `Plans search queries for the post, tries up to three rounds of stock and
web image search scored by a vision model, and generates an image only when
every round fails. Reads the post from stdin when the argument is "-" or missing.

Credentials come from the config file or GEMINI_API_KEY, UNSPLASH_ACCESS_KEY,
PEXELS_API_KEY, GOOGLE_CSE_KEY and GOOGLE_CSE_CX.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "coverpick.yaml", "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pickCmd.Flags().StringVarP(&outDir, "out", "o", "", "save the accepted image as a 1600x900 JPEG into this directory")
	rootCmd.AddCommand(pickCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPick(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	post, err := readPost(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	picker, err := newPicker(ctx)
	if err != nil {
		return err
	}

	res, cost, err := picker.PickWithCost(ctx, post)
	resp := coverpick.NewResponse(res, cost, err)

	if err == nil && outDir != "" {
		saved, perr := coverpick.Persist(ctx, nil, res.Winner.URL, outDir)
		if perr != nil {
			slog.Error("coverpick: persist failed", "error", perr.Error())
			resp = coverpick.NewResponse(nil, cost, perr)
			err = perr
		} else {
			resp.Persisted = saved
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	return err
}

func newPicker(ctx context.Context) (*coverpick.Picker, error) {
	fc, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	src, judge, planner, generate, err := fc.timeouts()
	if err != nil {
		return nil, err
	}

	gem, err := coverpick.NewGemini(ctx, fc.Gemini.APIKey, fc.Gemini.Model, fc.Gemini.ImageModel)
	if err != nil {
		return nil, err
	}

	return coverpick.New(coverpick.Config{
		Model:           gem,
		Generator:       gem,
		Sources:         fc.sources(),
		UserAgent:       fc.UserAgent,
		Pricing:         fc.Pricing,
		SourceTimeout:   src,
		JudgeTimeout:    judge,
		PlannerTimeout:  planner,
		GenerateTimeout: generate,
		OnPanic: func(tag string, r any) {
			slog.Error("coverpick: recovered panic", "tag", tag, "panic", fmt.Sprint(r))
		},
	})
}

func readPost(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read post: %w", err)
	}
	post := strings.TrimSpace(string(data))
	if post == "" {
		return "", errors.New("empty post")
	}
	return post, nil
}
