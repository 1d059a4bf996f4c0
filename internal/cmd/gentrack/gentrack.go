package gentrack

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"racing-line-optimizer/internal/config"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/track"
	"racing-line-optimizer/internal/track/imagetrack"
)

func NewGenTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-track",
		Short: "writes a track file from a preset or a track mask image",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate()
		},
	}
	cmd.Flags().StringVarP(&config.Preset,
		"preset",
		"p",
		"",
		fmt.Sprintf("track preset %v", track.PresetNames()))
	cmd.Flags().StringVarP(&config.GenFile,
		"out",
		"o",
		"track.yml",
		"track file to write")
	cmd.Flags().StringVar(&config.ImageFile,
		"image",
		"",
		"also write a track mask png")
	cmd.Flags().Float64Var(&config.PxPerMeter,
		"px-per-meter",
		2,
		"resolution of mask images")
	cmd.Flags().StringVar(&config.FromImage,
		"from-image",
		"",
		"trace the centerline of this track mask instead of using a preset")
	cmd.Flags().Float64Var(&config.TrackWidth,
		"track-width",
		0,
		"track width in meters (default: preset width or traced width)")
	return cmd
}

func generate() error {
	f, err := build()
	if err != nil {
		return err
	}
	if err := f.Save(config.GenFile); err != nil {
		return err
	}
	log.Info("Track written",
		log.String("file", config.GenFile),
		log.Int("points", len(f.Points)),
		log.Float64("length", track.Length(f.Points)),
		log.Float64("width", f.Width))

	if config.ImageFile == "" {
		return nil
	}
	return writeMask(f)
}

func build() (*track.File, error) {
	if config.FromImage != "" {
		res, err := imagetrack.Load(config.FromImage, 1/config.PxPerMeter)
		if err != nil {
			return nil, err
		}
		width := res.Trace.Width
		if config.TrackWidth > 0 {
			width = config.TrackWidth
		}
		return &track.File{
			Name:     config.FromImage,
			Width:    width,
			Friction: track.DefaultFriction,
			Points:   res.Trace.Points,
		}, nil
	}

	pts, err := track.Preset(config.Preset)
	if err != nil {
		return nil, err
	}
	width := track.DefaultWidth
	if config.TrackWidth > 0 {
		width = config.TrackWidth
	}
	return &track.File{
		Name:     config.Preset,
		Width:    width,
		Friction: track.DefaultFriction,
		Points:   pts,
	}, nil
}

func checkFlags() error {
	if config.FromImage == "" && config.Preset == "" {
		return errors.New("either --preset or --from-image is required")
	}
	if config.PxPerMeter <= 0 {
		return fmt.Errorf("--px-per-meter must be positive, got %v", config.PxPerMeter)
	}
	return nil
}

func writeMask(f *track.File) (err error) {
	img := track.RenderMask(f.Points, f.Width, config.PxPerMeter)
	out, err := os.Create(config.ImageFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close mask: %w", cerr)
		}
	}()
	if err := png.Encode(out, img); err != nil {
		return err
	}
	log.Info("Mask written",
		log.String("file", config.ImageFile),
		log.Int("width", img.Bounds().Dx()),
		log.Int("height", img.Bounds().Dy()))
	return nil
}
