package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/animation"
)

const variantParticles = "particles"

func newRainCmd() *cobra.Command {
	var (
		variant string
		width   int
		height  int
		frames  int
	)

	cmd := &cobra.Command{
		Use:   "rain",
		Short: "Play the rain animation in the terminal",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			surface, anim, interval, err := buildAnimation(variant, width, height)
			if err != nil {
				return err
			}

			if _, err := io.WriteString(out, "\033[2J"); err != nil {
				return err
			}

			var renderErr error
			loop := animation.NewLoop(variant, anim, interval).
				WithFrameLimit(frames).
				OnFrame(func(int) {
					if err := surface.Render(out, true); err != nil && renderErr == nil {
						renderErr = err
					}
				})

			loop.Start(cmd.Context())
			loop.Wait()
			return renderErr
		},
	}

	cmd.Flags().StringVar(&variant, "variant", string(animation.VariantMatrix), "matrix, digital or particles")
	cmd.Flags().IntVar(&width, "width", 80, "columns")
	cmd.Flags().IntVar(&height, "height", 24, "rows")
	cmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames; 0 runs until interrupted")
	return cmd
}

func buildAnimation(variant string, width, height int) (*animation.TextSurface, animation.Animation, time.Duration, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, 0, fmt.Errorf("width and height must be positive")
	}

	switch variant {
	case string(animation.VariantMatrix), string(animation.VariantDigital):
		opts := animation.OptionsFor(animation.Variant(variant))
		surface := animation.NewTextSurface(width, height, opts.FontSize)
		return surface, animation.NewRain(surface, opts, nil), opts.FrameDelay, nil
	case variantParticles:
		surface := animation.NewTextSurface(width, height, 1)
		return surface, animation.NewParticles(surface, animation.DefaultParticleOptions(), nil), time.Second / 60, nil
	default:
		return nil, nil, 0, fmt.Errorf("unknown variant %q", variant)
	}
}
