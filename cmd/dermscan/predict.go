package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dermscan/internal/inference"
	"dermscan/pkg/types"
)

func newPredictCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <image-path>",
		Short: "Initialize the model and classify one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			svc := inference.NewWithConfig(serviceConfig(cfg, log, nil))
			defer svc.Close()

			ctx := cmd.Context()
			if err := svc.Initialize(ctx, cfg.ModelURL); err != nil {
				return err
			}
			image, err := imageRef(args[0])
			if err != nil {
				return err
			}
			res, err := svc.Predict(ctx, image)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.PredictResponse{
				ID:            uuid.NewString(),
				Prediction:    string(res.Label),
				Confidence:    res.Confidence,
				RiskLevel:     string(res.RiskLevel),
				Source:        string(res.Source),
				UsingFallback: svc.UsingFallback(),
				Degraded:      res.Degraded,
			})
		},
	}
}

// imageRef turns a CLI argument into something Decode accepts: data and file
// URIs pass through, relative paths become absolute.
func imageRef(arg string) (string, error) {
	if strings.HasPrefix(arg, "data:") || strings.HasPrefix(arg, "file://") {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("image path: %w", err)
	}
	return abs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
